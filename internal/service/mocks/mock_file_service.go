package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/tungkyap/storage-management/internal/model"
	"github.com/tungkyap/storage-management/internal/service"
	"github.com/tungkyap/storage-management/internal/storage"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) SaveFile(ctx context.Context, up service.UploadInput, persistMetadata bool) (*service.SaveResult, error) {
	args := m.Called(ctx, up, persistMetadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SaveResult), args.Error(1)
}

func (m *MockFileService) Files(ctx context.Context) ([]model.File, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileService) FileByID(ctx context.Context, id string) (*model.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) FileByName(ctx context.Context, filename string) (*model.File, error) {
	args := m.Called(ctx, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) PresignURL(ctx context.Context, filename string) (string, error) {
	args := m.Called(ctx, filename)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) Open(ctx context.Context, filename string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, filename)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.ObjectInfo), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockFileService) DeleteObject(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}
