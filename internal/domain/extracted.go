package domain

import "github.com/shopspring/decimal"

// ExtractedDocument is the immutable value produced by the OCR provider for
// one scanned document. Absent fields are nil pointers; an empty string is
// never used to mean "unknown". The json tags follow the provider's wire
// names so the cached parse payload round-trips unchanged.
type ExtractedDocument struct {
	DocumentType  DocumentType `json:"document_type"`
	Currency      *string      `json:"currency"`
	InvoiceDate   *string      `json:"date"`
	PurchaseDate  *string      `json:"purchasedate"`
	DueDate       *string      `json:"payment_due_date"`
	InvoiceNumber *string      `json:"invoice_number"`

	CocNumber         *string `json:"merchant_coc_number"`
	CountryCode       *string `json:"merchant_country_code"`
	VatNumber         *string `json:"merchant_vat_number"`
	Email             *string `json:"merchant_email"`
	Website           *string `json:"merchant_website"`
	BankAccountNumber *string `json:"merchant_bank_account_number"`
	MerchantRef       *string `json:"merchant_id"`
	MerchantName      *string `json:"merchant_name"`
	Phone             *string `json:"merchant_phone"`

	LineItems []LineItem `json:"lineitems"`
}

// LineItem is one extracted bill line. Monetary fields are integer minor
// units (cents); VatPercentage is a decimal percentage like 21.0.
type LineItem struct {
	Title           *string          `json:"title"`
	Description     *string          `json:"description"`
	Quantity        *decimal.Decimal `json:"quantity"`
	AmountMinor     *int64           `json:"amount"`
	AmountEachMinor *int64           `json:"amount_each"`
	VatAmountMinor  *int64           `json:"vat_amount"`
	SKU             *string          `json:"sku"`
	VatPercentage   *decimal.Decimal `json:"vat_percentage"`
	VatCode         *string          `json:"vat_code"`
}

// Label returns the line's display text, preferring the title.
func (l *LineItem) Label() string {
	if l.Title != nil && *l.Title != "" {
		return *l.Title
	}
	if l.Description != nil {
		return *l.Description
	}
	return ""
}
