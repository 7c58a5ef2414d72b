package app

import (
	"context"
	"errors"
	"testing"

	"tdcov/internal/testkit"
	"tdcov/ports"

	"github.com/stretchr/testify/assert"
)

func TestResultWriters(t *testing.T) {
	first := &testkit.MemoryResultWriter{}
	second := &testkit.MemoryResultWriter{}
	results := ports.CovarianceResults{Lens: "L", Dataset: "D", MedianRatio: 1.1}

	assert.NoError(t, ResultWriters{first, second}.WriteResults(context.Background(), results))
	assert.Len(t, first.Results, 1)
	assert.Len(t, second.Results, 1)

	boom := errors.New("boom")
	failing := &testkit.MemoryResultWriter{Err: boom}
	third := &testkit.MemoryResultWriter{}
	err := ResultWriters{failing, third}.WriteResults(context.Background(), results)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, third.Results)
}
