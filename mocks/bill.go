package mocks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"billscan/internal/domain"
)

// MockBillRepository is a mock implementation of port.BillRepository.
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) GetByID(ctx context.Context, companyID, billID uuid.UUID) (*domain.VendorBill, error) {
	args := m.Called(ctx, companyID, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VendorBill), args.Error(1)
}

// MockAttachmentRepository is a mock implementation of port.AttachmentRepository.
type MockAttachmentRepository struct {
	mock.Mock
}

func (m *MockAttachmentRepository) GetByID(ctx context.Context, attachmentID uuid.UUID) (*domain.Attachment, error) {
	args := m.Called(ctx, attachmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) GetMain(ctx context.Context, billID uuid.UUID) (*domain.Attachment, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) FindFirstPDF(ctx context.Context, billID uuid.UUID) (*domain.Attachment, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) Create(ctx context.Context, att *domain.Attachment) error {
	args := m.Called(ctx, att)
	return args.Error(0)
}

func (m *MockAttachmentRepository) Delete(ctx context.Context, attachmentID uuid.UUID) error {
	args := m.Called(ctx, attachmentID)
	return args.Error(0)
}

func (m *MockAttachmentRepository) SaveParsedContent(ctx context.Context, attachmentID uuid.UUID, parsed json.RawMessage, rawText string) error {
	args := m.Called(ctx, attachmentID, parsed, rawText)
	return args.Error(0)
}

// MockDraftApplier is a mock implementation of port.DraftApplier.
type MockDraftApplier struct {
	mock.Mock
}

func (m *MockDraftApplier) ApplyDraft(ctx context.Context, companyID, billID uuid.UUID, draft *domain.DraftInvoice) error {
	args := m.Called(ctx, companyID, billID, draft)
	return args.Error(0)
}
