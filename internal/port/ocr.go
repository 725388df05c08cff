package port

import (
	"context"
	"encoding/json"

	"billscan/internal/domain"
)

// ParseResult is the outcome of one OCR call. Parsed is the provider's
// verbatim structured payload (cached on the attachment for idempotent
// re-parsing); Document is the same payload decoded into the typed model.
type ParseResult struct {
	Document *domain.ExtractedDocument
	Parsed   json.RawMessage
	RawText  string
}

// InvoiceParser abstracts the remote OCR provider. Implementations own
// timeout and retry policy; the engine never suspends mid-reconciliation.
type InvoiceParser interface {
	ParseInvoice(ctx context.Context, fileBytes []byte) (*ParseResult, error)
}

// CreditClient exposes the provider's remaining credit, display-only.
type CreditClient interface {
	CreditBalance(ctx context.Context, kind string) (int, error)
}
