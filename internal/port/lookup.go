package port

import (
	"context"

	"github.com/google/uuid"

	"billscan/internal/domain"
)

// TaxQuery narrows the tax candidate set by structural hints taken from one
// extracted line item. PriceInclude is tri-state: nil means "either".
type TaxQuery struct {
	Kind           domain.TaxKind
	PriceInclude   *bool
	PercentageLike string // substring of the tax description; implies percent type
	CodeLike       string // substring of the tax name; implies fixed type
}

// RecordLookup is the read-only capability interface over the system of
// record. Every query is restricted to the scope's effective company or to
// global records (company IS NULL); a record owned by another company must
// never be returned. Single-result queries return domain.ErrNotFound on a
// miss. Ranking for ambiguous matches is stable: partners by supplier rank
// descending then id, taxes by sequence then id.
type RecordLookup interface {
	// SupportsCocNumber reports whether the backing schema carries the
	// optional chamber-of-commerce registration number field.
	SupportsCocNumber() bool

	FindPartnerByCocNumber(ctx context.Context, scope domain.MatchScope, coc string) (*domain.Partner, error)
	// FindPartnerByVat matches top-level partners only (no parent record).
	FindPartnerByVat(ctx context.Context, scope domain.MatchScope, vat string) (*domain.Partner, error)
	// FindPartnerByEmail is a case-insensitive exact match.
	FindPartnerByEmail(ctx context.Context, scope domain.MatchScope, email string) (*domain.Partner, error)
	// FindPartnerByWebsiteDomain matches partners whose stored website
	// contains the domain, case-insensitively.
	FindPartnerByWebsiteDomain(ctx context.Context, scope domain.MatchScope, dom string) (*domain.Partner, error)
	// FindPartnerByEmailDomain matches partners whose stored email ends
	// with "@"+dom, case-insensitively.
	FindPartnerByEmailDomain(ctx context.Context, scope domain.MatchScope, dom string) (*domain.Partner, error)
	FindPartnerByRef(ctx context.Context, scope domain.MatchScope, ref string) (*domain.Partner, error)
	// FindPartnerByName is a case-insensitive exact match on the display name.
	FindPartnerByName(ctx context.Context, scope domain.MatchScope, name string) (*domain.Partner, error)
	FindPartnerByPhone(ctx context.Context, scope domain.MatchScope, phone string) (*domain.Partner, error)

	FindBankAccount(ctx context.Context, scope domain.MatchScope, partnerID uuid.UUID, sanitized string) (*domain.BankAccount, error)
	FindTaxCandidates(ctx context.Context, scope domain.MatchScope, q TaxQuery) ([]domain.Tax, error)

	FindCountryByCode(ctx context.Context, code string) (*domain.Country, error)
	FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)
	FindProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
}
