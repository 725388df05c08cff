package port

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"billscan/internal/domain"
)

// BillRepository reads the editable host record. Queries include companyID
// to enforce company isolation at the data layer.
type BillRepository interface {
	GetByID(ctx context.Context, companyID, billID uuid.UUID) (*domain.VendorBill, error)
}

// AttachmentRepository manages attachment metadata and the cached OCR parse
// result.
type AttachmentRepository interface {
	GetByID(ctx context.Context, attachmentID uuid.UUID) (*domain.Attachment, error)
	GetMain(ctx context.Context, billID uuid.UUID) (*domain.Attachment, error)
	FindFirstPDF(ctx context.Context, billID uuid.UUID) (*domain.Attachment, error)
	Create(ctx context.Context, att *domain.Attachment) error
	Delete(ctx context.Context, attachmentID uuid.UUID) error
	SaveParsedContent(ctx context.Context, attachmentID uuid.UUID, parsed json.RawMessage, rawText string) error
}

// DraftApplier applies a reconciled draft to the editable bill, replacing
// any existing lines. The whole header+lines mutation is a single
// apply-or-fail boundary: on error nothing is committed.
type DraftApplier interface {
	ApplyDraft(ctx context.Context, companyID, billID uuid.UUID, draft *domain.DraftInvoice) error
}

// BillStore combines read access and draft application, as implemented by
// the bill repository.
type BillStore interface {
	BillRepository
	DraftApplier
}
