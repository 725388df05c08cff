package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Partner is a trading-partner record from the system of record.
// A nil CompanyID marks a global record visible to every company.
type Partner struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	CompanyID    *uuid.UUID `db:"company_id" json:"company_id"`
	ParentID     *uuid.UUID `db:"parent_id" json:"parent_id"`
	CountryID    *uuid.UUID `db:"country_id" json:"country_id"`
	Name         string     `db:"name" json:"name"`
	VAT          string     `db:"vat" json:"vat"`
	CocNumber    string     `db:"coc_number" json:"coc_number"`
	Email        string     `db:"email" json:"email"`
	Website      string     `db:"website" json:"website"`
	Ref          string     `db:"ref" json:"ref"`
	Phone        string     `db:"phone" json:"phone"`
	SupplierRank int        `db:"supplier_rank" json:"supplier_rank"`
}

// BankAccount is a partner bank account with its canonical comparable number.
type BankAccount struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PartnerID       uuid.UUID  `db:"partner_id" json:"partner_id"`
	CompanyID       *uuid.UUID `db:"company_id" json:"company_id"`
	SanitizedNumber string     `db:"sanitized_number" json:"sanitized_number"`
}

// Tax is a tax code record. Amount carries 4 decimal digits of precision.
type Tax struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	CompanyID    *uuid.UUID      `db:"company_id" json:"company_id"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description"`
	Kind         TaxKind         `db:"kind" json:"kind"`
	AmountType   TaxAmountType   `db:"amount_type" json:"amount_type"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	PriceInclude bool            `db:"price_include" json:"price_include"`
	Sequence     int             `db:"sequence" json:"sequence"`
}

// Currency is a currency record resolved by ISO code.
type Currency struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Code string    `db:"code" json:"code"`
}

// Country is a country record resolved by ISO code.
type Country struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Code string    `db:"code" json:"code"`
}

// Product is a catalog record matched by barcode/SKU.
type Product struct {
	ID      uuid.UUID `db:"id" json:"id"`
	Name    string    `db:"name" json:"name"`
	Barcode string    `db:"barcode" json:"barcode"`
}

// VendorBill is the editable host record that extracted data is applied to.
type VendorBill struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	CompanyID     uuid.UUID  `db:"company_id" json:"company_id"`
	Class         BillClass  `db:"class" json:"class"`
	State         BillState  `db:"state" json:"state"`
	PartnerID     *uuid.UUID `db:"partner_id" json:"partner_id"`
	BankAccountID *uuid.UUID `db:"bank_account_id" json:"bank_account_id"`
	CurrencyID    *uuid.UUID `db:"currency_id" json:"currency_id"`
	SourceEmail   string     `db:"source_email" json:"source_email"`
	Reference     string     `db:"reference" json:"reference"`
	InvoiceDate   *time.Time `db:"invoice_date" json:"invoice_date"`
	DueDate       *time.Time `db:"due_date" json:"due_date"`
	PurchaseDate  *time.Time `db:"purchase_date" json:"purchase_date"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// IsPurchaseDocument reports whether the bill is on the purchase side.
func (b *VendorBill) IsPurchaseDocument() bool {
	return b.Class == BillClassPurchase
}

// Attachment stores metadata for a scanned file plus the cached parse result.
// ParsedContent is the verbatim OCR payload; a non-empty value means the
// remote call can be skipped on re-parse.
type Attachment struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	BillID        uuid.UUID       `db:"bill_id" json:"bill_id"`
	MimeType      string          `db:"mime_type" json:"mime_type"`
	StorageBucket string          `db:"storage_bucket" json:"storage_bucket"`
	StorageKey    string          `db:"storage_key" json:"storage_key"`
	IsMain        bool            `db:"is_main" json:"is_main"`
	ParsedContent json.RawMessage `db:"parsed_content" json:"parsed_content"`
	RawText       string          `db:"raw_text" json:"raw_text"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// Scannable reports whether the attachment's mime type is eligible for OCR.
func (a *Attachment) Scannable() bool {
	return a.MimeType == "application/pdf" || len(a.MimeType) >= 6 && a.MimeType[:6] == "image/"
}

// AllowedUploadExtensions maps accepted upload extensions to their content type.
var AllowedUploadExtensions = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// AllowedUploadContentTypes lists the sniffed content types accepted for upload.
var AllowedUploadContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}
