package testkit

import (
	"context"
	"sync"

	"tdcov/domain/core"
	"tdcov/domain/delay"
	"tdcov/ports"
)

// MemoryGroupStore serves fixed parameter groups. A nil slice reports
// core.ErrNotFound, like a missing file.
type MemoryGroupStore struct {
	Accepted    []delay.ParameterGroup
	All         []delay.ParameterGroup
	AcceptedErr error
	AllErr      error
}

func (s *MemoryGroupStore) LoadAccepted(ctx context.Context, lens, dataset string) ([]delay.ParameterGroup, error) {
	if s.AcceptedErr != nil {
		return nil, s.AcceptedErr
	}
	if s.Accepted == nil {
		return nil, core.NewNotFoundError("accepted groups", lens+"_"+dataset)
	}
	return s.Accepted, nil
}

func (s *MemoryGroupStore) LoadAll(ctx context.Context, lens, dataset string) ([]delay.ParameterGroup, error) {
	if s.AllErr != nil {
		return nil, s.AllErr
	}
	if s.All == nil {
		return nil, core.NewNotFoundError("groups", lens+"_"+dataset)
	}
	return s.All, nil
}

// MemoryArchiveCatalog serves archives whose runs are held in memory
type MemoryArchiveCatalog struct {
	mu       sync.Mutex
	archives []ports.Archive
	runs     map[string][]string
	results  map[string]*delay.MockResultSet
	// Collected records every run path that was loaded, in order
	Collected []string
}

// NewMemoryArchiveCatalog creates an empty catalog
func NewMemoryArchiveCatalog() *MemoryArchiveCatalog {
	return &MemoryArchiveCatalog{
		runs:    make(map[string][]string),
		results: make(map[string]*delay.MockResultSet),
	}
}

// AddArchive registers an archive. Each run path maps to its result set;
// a nil set registers a run that cannot be collected.
func (c *MemoryArchiveCatalog) AddArchive(name string, runs map[string]*delay.MockResultSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.archives = append(c.archives, ports.Archive{Name: name, Path: "memory/" + name})
	for path, set := range runs {
		c.runs[name] = append(c.runs[name], path)
		if set != nil {
			c.results[path] = set
		}
	}
}

func (c *MemoryArchiveCatalog) ListArchives(ctx context.Context, lens, dataset string) ([]ports.Archive, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ports.Archive(nil), c.archives...), nil
}

func (c *MemoryArchiveCatalog) CandidateRuns(ctx context.Context, archive ports.Archive) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.runs[archive.Name]...), nil
}

func (c *MemoryArchiveCatalog) Collect(ctx context.Context, runPath string) (*delay.MockResultSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.results[runPath]
	if !ok {
		return nil, core.NewNotFoundError("mock run", runPath)
	}
	c.Collected = append(c.Collected, runPath)
	return set, nil
}

// MemoryResultWriter keeps every written result
type MemoryResultWriter struct {
	mu      sync.Mutex
	Results []ports.CovarianceResults
	Err     error
}

func (w *MemoryResultWriter) WriteResults(ctx context.Context, results ports.CovarianceResults) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	w.Results = append(w.Results, results)
	return nil
}

// Last returns the most recent result, or nil
func (w *MemoryResultWriter) Last() *ports.CovarianceResults {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.Results) == 0 {
		return nil
	}
	r := w.Results[len(w.Results)-1]
	return &r
}

// MemoryTableStore holds tables keyed by path
type MemoryTableStore struct {
	mu          sync.Mutex
	Delays      map[string]*delay.DelayTable
	Covariances map[string]*delay.CovarianceMatrix
}

// NewMemoryTableStore creates an empty table store
func NewMemoryTableStore() *MemoryTableStore {
	return &MemoryTableStore{
		Delays:      make(map[string]*delay.DelayTable),
		Covariances: make(map[string]*delay.CovarianceMatrix),
	}
}

func (s *MemoryTableStore) ReadDelays(ctx context.Context, path string) (*delay.DelayTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.Delays[path]
	if !ok {
		return nil, core.NewNotFoundError("delay table", path)
	}
	return t, nil
}

func (s *MemoryTableStore) ReadCovariance(ctx context.Context, path string) (*delay.CovarianceMatrix, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Covariances[path]
	if !ok {
		return nil, core.NewNotFoundError("covariance table", path)
	}
	return c, nil
}

func (s *MemoryTableStore) WriteDelays(ctx context.Context, path string, table *delay.DelayTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Delays[path] = table
	return nil
}

func (s *MemoryTableStore) WriteCovariance(ctx context.Context, path string, cov *delay.CovarianceMatrix) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Covariances[path] = cov
	return nil
}
