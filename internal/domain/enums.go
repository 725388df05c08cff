package domain

// DocumentType classifies the OCR provider's verdict on a scanned document.
type DocumentType string

const (
	DocumentTypeInvoice DocumentType = "invoice"
	DocumentTypeOther   DocumentType = "other"
)

// BillClass distinguishes purchase-side bills from sales-side invoices.
type BillClass string

const (
	BillClassPurchase BillClass = "purchase"
	BillClassSale     BillClass = "sale"
)

// BillState represents the lifecycle of a vendor bill.
type BillState string

const (
	BillStateDraft     BillState = "draft"
	BillStatePosted    BillState = "posted"
	BillStateCancelled BillState = "cancelled"
)

// TaxKind restricts which side of the books a tax applies to.
type TaxKind string

const (
	TaxKindPurchase TaxKind = "purchase"
	TaxKindSale     TaxKind = "sale"
)

// TaxAmountType tells whether a tax amount is a percentage or a fixed sum.
type TaxAmountType string

const (
	TaxAmountPercent TaxAmountType = "percent"
	TaxAmountFixed   TaxAmountType = "fixed"
)

// UserRole defines the role hierarchy within a company.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleAccountant UserRole = "accountant"
	RoleClerk      UserRole = "clerk"
)

// CanViewBilling reports whether the role may query the provider credit balance.
func (r UserRole) CanViewBilling() bool {
	return r == RoleAdmin || r == RoleAccountant
}

// MatchStep identifies one heuristic of the identity-matching cascade.
type MatchStep string

const (
	StepCocNumber     MatchStep = "coc_number"
	StepCountryCode   MatchStep = "country_code"
	StepVatNumber     MatchStep = "vat_number"
	StepEmail         MatchStep = "email"
	StepWebDomain     MatchStep = "web_domain"
	StepMerchantRef   MatchStep = "merchant_ref"
	StepMerchantName  MatchStep = "merchant_name"
	StepPhone         MatchStep = "phone"
	StepBankAccount   MatchStep = "bank_account"
	StepLineTax       MatchStep = "line_tax"
	StepCurrency      MatchStep = "currency"
	StepProduct       MatchStep = "product"
	StepPartnerCreate MatchStep = "partner_create"
	StepBankCreate    MatchStep = "bank_account_create"
	StepTaxCreate     MatchStep = "tax_create"
)

// Date layouts used by the OCR provider's extracted fields.
const (
	LayoutDateTime = "2006-01-02T15:04:05"
	LayoutDate     = "2006-01-02"
)
