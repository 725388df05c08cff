package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchScope is the company (and optionally country) boundary that every
// record lookup is restricted to. Records belonging to another company must
// never be visible inside a scope; that is a correctness rule, not a
// ranking preference.
type MatchScope struct {
	CompanyID       uuid.UUID
	ForcedCompanyID *uuid.UUID
	CountryID       *uuid.UUID
}

// EffectiveCompany returns the forced company override when set.
func (s MatchScope) EffectiveCompany() uuid.UUID {
	if s.ForcedCompanyID != nil {
		return *s.ForcedCompanyID
	}
	return s.CompanyID
}

// WithCountry returns a copy of the scope narrowed to one country.
func (s MatchScope) WithCountry(countryID uuid.UUID) MatchScope {
	s.CountryID = &countryID
	return s
}

// UnresolvedSignal records that a matching step ran and found no candidate.
// Line is the zero-based line-item index, or HeaderLine for header-level
// steps. Steps skipped for missing input are never recorded.
type UnresolvedSignal struct {
	Step   MatchStep `json:"step"`
	Line   int       `json:"line"`
	Detail string    `json:"detail"`
}

// HeaderLine marks a signal that does not belong to a specific line item.
const HeaderLine = -1

// ResolutionResult carries everything the resolver decided about one
// document. LineTaxes is parallel to the document's line items.
type ResolutionResult struct {
	Partner     *Partner           `json:"partner"`
	BankAccount *BankAccount       `json:"bank_account"`
	LineTaxes   []*Tax             `json:"line_taxes"`
	Warnings    []UnresolvedSignal `json:"warnings"`
}

// DraftInvoice is the reconciled output: a fully resolved header plus
// ordered lines, constructed once per ingestion and handed to the mutation
// collaborator in a single apply-or-fail call.
type DraftInvoice struct {
	Partner      *Partner     `json:"partner"`
	BankAccount  *BankAccount `json:"bank_account"`
	Currency     *Currency    `json:"currency"`
	InvoiceDate  *time.Time   `json:"invoice_date"`
	DueDate      *time.Time   `json:"due_date"`
	PurchaseDate *time.Time   `json:"purchase_date"`
	Reference    string       `json:"reference"`
	Lines        []DraftLine  `json:"lines"`
}

// DraftLine is one resolved invoice line.
type DraftLine struct {
	Product     *Product        `json:"product"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Tax         *Tax            `json:"tax"`
}
