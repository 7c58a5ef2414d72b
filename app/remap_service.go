package app

import (
	"context"
	"fmt"
	"path/filepath"

	"tdcov/domain/remap"
	"tdcov/internal"
	"tdcov/ports"
)

const (
	RemappedDelaysFile     = "delays_remapped.csv"
	RemappedCovarianceFile = "covariance_remapped.csv"
)

// RemapRequest names the tables to relabel and where to write them.
// Either path may be empty to skip that table.
type RemapRequest struct {
	DelaysPath     string
	CovariancePath string
	Mapping        remap.Remapping
	OutDir         string
}

// RemapResult lists the files written
type RemapResult struct {
	DelaysPath     string
	CovariancePath string
}

// RemapService relabels stored delay and covariance tables
type RemapService struct {
	tables ports.TableStore
	logger *internal.Logger
}

// NewRemapService creates a remap service
func NewRemapService(tables ports.TableStore, logger *internal.Logger) *RemapService {
	return &RemapService{tables: tables, logger: logger}
}

// Run validates the mapping, then remaps and writes each requested table
func (s *RemapService) Run(ctx context.Context, req RemapRequest) (*RemapResult, error) {
	if err := remap.Validate(req.Mapping); err != nil {
		return nil, err
	}
	if req.DelaysPath == "" && req.CovariancePath == "" {
		return nil, fmt.Errorf("nothing to remap: no delay or covariance table given")
	}

	result := &RemapResult{}
	if req.DelaysPath != "" {
		delays, err := s.tables.ReadDelays(ctx, req.DelaysPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read delays: %w", err)
		}
		remapped, err := remap.RemapDelays(delays, req.Mapping)
		if err != nil {
			return nil, err
		}
		result.DelaysPath = filepath.Join(req.OutDir, RemappedDelaysFile)
		if err := s.tables.WriteDelays(ctx, result.DelaysPath, remapped); err != nil {
			return nil, fmt.Errorf("failed to write delays: %w", err)
		}
		s.logger.Info("Remapped %d delays into %s", len(remapped.Labels), result.DelaysPath)
	}

	if req.CovariancePath != "" {
		cov, err := s.tables.ReadCovariance(ctx, req.CovariancePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read covariance: %w", err)
		}
		remapped, err := remap.RemapCovariance(cov, req.Mapping)
		if err != nil {
			return nil, err
		}
		result.CovariancePath = filepath.Join(req.OutDir, RemappedCovarianceFile)
		if err := s.tables.WriteCovariance(ctx, result.CovariancePath, remapped); err != nil {
			return nil, fmt.Errorf("failed to write covariance: %w", err)
		}
		s.logger.Info("Remapped %dx%d covariance into %s", len(remapped.Labels), len(remapped.Labels), result.CovariancePath)
	}
	return result, nil
}
