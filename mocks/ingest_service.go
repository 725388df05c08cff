package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"billscan/internal/domain"
	"billscan/internal/service"
)

// MockIngestService is a mock implementation of service.IngestService.
type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) ParseIntoBill(ctx context.Context, input *service.ParseInput) (*service.ParseOutcome, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ParseOutcome), args.Error(1)
}

func (m *MockIngestService) AttachFile(ctx context.Context, input *service.AttachInput) (*service.AttachOutcome, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AttachOutcome), args.Error(1)
}

func (m *MockIngestService) DetachFile(ctx context.Context, companyID, billID, attachmentID uuid.UUID) error {
	args := m.Called(ctx, companyID, billID, attachmentID)
	return args.Error(0)
}

func (m *MockIngestService) AutoParse(ctx context.Context, companyID, billID uuid.UUID, enabled bool) (bool, error) {
	args := m.Called(ctx, companyID, billID, enabled)
	return args.Bool(0), args.Error(1)
}

func (m *MockIngestService) CreditBalance(ctx context.Context, role domain.UserRole, kind string) (int, error) {
	args := m.Called(ctx, role, kind)
	return args.Int(0), args.Error(1)
}
