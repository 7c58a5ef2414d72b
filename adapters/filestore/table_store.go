package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tdcov/adapters/excel"
	"tdcov/domain/core"
	"tdcov/domain/delay"
)

// TableStore reads delay and covariance tables from CSV or xlsx files and
// writes them back in the format given by the file extension
type TableStore struct {
	config excel.ExcelConfig
}

// NewTableStore creates a table store
func NewTableStore(config excel.ExcelConfig) *TableStore {
	return &TableStore{config: config}
}

func (s *TableStore) ReadDelays(ctx context.Context, path string) (*delay.DelayTable, error) {
	records, err := s.read(path)
	if err != nil {
		return nil, err
	}
	table, err := DecodeDelays(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

func (s *TableStore) ReadCovariance(ctx context.Context, path string) (*delay.CovarianceMatrix, error) {
	records, err := s.read(path)
	if err != nil {
		return nil, err
	}
	cov, err := DecodeCovariance(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cov, nil
}

func (s *TableStore) WriteDelays(ctx context.Context, path string, table *delay.DelayTable) error {
	return s.write(path, EncodeDelays(table))
}

func (s *TableStore) WriteCovariance(ctx context.Context, path string, cov *delay.CovarianceMatrix) error {
	return s.write(path, EncodeCovariance(cov))
}

func (s *TableStore) read(path string) ([][]string, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, core.NewNotFoundError("table", path)
	}
	data, err := excel.NewDataReader(path, s.config.SheetName).ReadData()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedTable, err)
	}
	return data.Records(), nil
}

func (s *TableStore) write(path string, records [][]string) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		data := &excel.TableData{Headers: records[0], Rows: records[1:]}
		return excel.WriteWorkbook(path, excel.Sheet{Name: s.config.SheetName, Data: data})
	}
	return WriteCSV(path, records)
}
