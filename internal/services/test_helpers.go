package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"datapulse/internal/dataprocessing"
)

// MockTableLoader is a mock for the TableLoader interface
type MockTableLoader struct {
	mock.Mock
}

func (m *MockTableLoader) Load(ctx context.Context, path string) (dataprocessing.LoadResult, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(dataprocessing.LoadResult), args.Error(1)
}

// MockArchiveWalker is a mock for the ArchiveWalker interface
type MockArchiveWalker struct {
	mock.Mock
}

func (m *MockArchiveWalker) Walk(ctx context.Context, path string) (*dataprocessing.WalkResult, error) {
	args := m.Called(ctx, path)
	if r := args.Get(0); r != nil {
		return r.(*dataprocessing.WalkResult), args.Error(1)
	}
	return nil, args.Error(1)
}
