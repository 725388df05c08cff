package resolve_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"billscan/internal/domain"
	"billscan/internal/port"
	"billscan/internal/resolve"
	"billscan/mocks"
)

func strp(s string) *string { return &s }

func decp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newScope() domain.MatchScope {
	return domain.MatchScope{CompanyID: uuid.New()}
}

func TestResolvePartner_VatWinsOverName(t *testing.T) {
	lookup := new(mocks.MockRecordLookup)
	scope := newScope()
	want := &domain.Partner{ID: uuid.New(), Name: "Acme BV"}

	doc := &domain.ExtractedDocument{
		VatNumber:    strp("NL 123456789 B01"),
		MerchantName: strp("Some Other Company"),
	}

	lookup.On("SupportsCocNumber").Return(false)
	lookup.On("FindPartnerByVat", mock.Anything, scope, "NL123456789B01").Return(want, nil)

	got, warnings, err := resolve.New(lookup).ResolvePartner(context.Background(), doc, scope, resolve.Options{})

	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Empty(t, warnings)
	lookup.AssertNotCalled(t, "FindPartnerByName", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolvePartner_SkippedStepsProduceNoWarnings(t *testing.T) {
	lookup := new(mocks.MockRecordLookup)
	scope := newScope()
	want := &domain.Partner{ID: uuid.New(), Name: "Acme BV"}

	// Only a name is present. Every earlier step lacks input and must be
	// skipped without touching the lookup or leaving a warning.
	doc := &domain.ExtractedDocument{MerchantName: strp("Acme BV")}

	lookup.On("SupportsCocNumber").Return(false)
	lookup.On("FindPartnerByName", mock.Anything, scope, "Acme BV").Return(want, nil)

	got, warnings, err := resolve.New(lookup).ResolvePartner(context.Background(), doc, scope, resolve.Options{})

	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Empty(t, warnings)
	lookup.AssertNotCalled(t, "FindPartnerByVat", mock.Anything, mock.Anything, mock.Anything)
	lookup.AssertNotCalled(t, "FindPartnerByEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolvePartner_AttemptedMissesCollectWarnings(t *testing.T) {
	lookup := new(mocks.MockRecordLookup)
	scope := newScope()

	doc := &domain.ExtractedDocument{
		VatNumber:    strp("NL999999999B99"),
		MerchantName: strp("Nobody"),
	}

	lookup.On("SupportsCocNumber").Return(false)
	lookup.On("FindPartnerByVat", mock.Anything, scope, "NL999999999B99").Return(nil, domain.ErrNotFound)
	lookup.On("FindPartnerByName", mock.Anything, scope, "Nobody").Return(nil, domain.ErrNotFound)

	got, warnings, err := resolve.New(lookup).ResolvePartner(context.Background(), doc, scope, resolve.Options{})

	require.NoError(t, err)
	assert.Nil(t, got)
	require.Len(t, warnings, 2)
	assert.Equal(t, domain.StepVatNumber, warnings[0].Step)
	assert.Equal(t, domain.StepMerchantName, warnings[1].Step)
	assert.Equal(t, domain.HeaderLine, warnings[0].Line)
}

func TestResolvePartner_CountryNarrowsScope(t *testing.T) {
	lookup := new(mocks.MockRecordLookup)
	scope := newScope()
	countryID := uuid.New()
	narrowed := scope.WithCountry(countryID)
	want := &domain.Partner{ID: uuid.New()}

	doc := &domain.ExtractedDocument{
		CountryCode: strp("NL"),
		VatNumber:   strp("NL123456789B01"),
	}

	lookup.On("SupportsCocNumber").Return(false)
	lookup.On("FindCountryByCode", mock.Anything, "NL").Return(&domain.Country{ID: countryID, Code: "NL"}, nil)
	// The VAT lookup must run against the country-narrowed scope.
	lookup.On("FindPartnerByVat", mock.Anything, narrowed, "NL123456789B01").Return(want, nil)

	got, warnings, err := resolve.New(lookup).ResolvePartner(context.Background(), doc, scope, resolve.Options{})

	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Empty(t, warnings)
}

func TestResolvePartner_UnknownCountryWarnsAndContinuesUnnarrowed(t *testing.T) {
	lookup := new(mocks.MockRecordLookup)
	scope := newScope()
	want := &domain.Partner{ID: uuid.New()}

	doc := &domain.ExtractedDocument{
		CountryCode: strp("XX"),
		VatNumber:   strp("NL123456789B01"),
	}

	lookup.On("SupportsCocNumber").Return(false)
	lookup.On("FindCountryByCode", mock.Anything, "XX").Return(nil, domain.ErrNotFound)
	lookup.On("FindPartnerByVat", mock.Anything, scope, "NL123456789B01").Return(want, nil)

	got, warnings, err := resolve.New(lookup).ResolvePartner(context.Background(), doc, scope, resolve.Options{})

	require.NoError(t, err)
	assert.Equal(t, want, got)
	require.Len(t, warnings, 1)
	assert.Equal(t, domain.StepCountryCode, warnings[0].Step)
}

func TestResolvePartner_CocStepGatedOnCapability(t *testing.T) {
	lookup := new(mocks.MockRecordLookup)
	scope := newScope()
	want := &domain.Partner{ID: uuid.New()}

	doc := &domain.ExtractedDocument{
		CocNumber: strp("12345678"),
		VatNumber: strp("NL123456789B01"),
	}

	lookup.On("SupportsCocNumber").Return(false)
	lookup.On("FindPartnerByVat", mock.Anything, scope, "NL123456789B01").Return(want, nil)

	got, warnings, err := resolve.New(lookup).ResolvePartner(context.Background(), doc, scope, resolve.Options{})

	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Empty(t, warnings)
	lookup.AssertNotCalled(t, "FindPartnerByCocNumber", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolvePartner_EmailWithoutAtSignSkipped(t *testing.T) {
	lookup := new(mocks.MockRecordLookup)
	scope := newScope()
	want := &domain.Partner{ID: uuid.New()}

	doc := &domain.ExtractedDocument{
		Email:        strp("not-an-email"),
		MerchantName: strp("Acme BV"),
	}

	lookup.On("SupportsCocNumber").Return(false)
	lookup.On("FindPartnerByName", mock.Anything, scope, "Acme BV").Return(want, nil)

	got, _, err := resolve.New(lookup).ResolvePartner(context.Background(), doc, scope, resolve.Options{})

	require.NoError(t, err)
	assert.Equal(t, want, got)
	lookup.AssertNotCalled(t, "FindPartnerByEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolvePartner_WebsiteDomainWithEmailFallback(t *testing.T) {
	lookup := new(mocks.MockRecordLookup)
	scope := newScope()
	want := &domain.Partner{ID: uuid.New()}

	doc := &domain.ExtractedDocument{
		Website: strp("https://shop.acme.com/checkout"),
	}

	lookup.On("SupportsCocNumber").Return(false)
	lookup.On("FindPartnerByWebsiteDomain", mock.Anything, scope, "acme.com").Return(nil, domain.ErrNotFound)
	lookup.On("FindPartnerByEmailDomain", mock.Anything, scope, "acme.com").Return(want, nil)

	got, warnings, err := resolve.New(lookup).ResolvePartner(context.Background(), doc, scope, resolve.Options{})

	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Empty(t, warnings)
}

func TestResolvePartner_EmailDomainNoStoredEmailFallback(t *testing.T) {
	lookup := new(mocks.MockRecordLookup)
	scope := newScope()

	// No website: the domain comes from the merchant email. The stored-email
	// fallback must not run for an email-derived domain.
	doc := &domain.ExtractedDocument{Email: strp("billing@gmail.com")}

	lookup.On("SupportsCocNumber").Return(false)
	lookup.On("FindPartnerByEmail", mock.Anything, scope, "billing@gmail.com").Return(nil, domain.ErrNotFound)
	lookup.On("FindPartnerByWebsiteDomain", mock.Anything, scope, "gmail.com").Return(nil, domain.ErrNotFound)

	got, warnings, err := resolve.New(lookup).ResolvePartner(context.Background(), doc, scope, resolve.Options{})

	require.NoError(t, err)
	assert.Nil(t, got)
	require.Len(t, warnings, 2)
	assert.Equal(t, domain.StepEmail, warnings[0].Step)
	assert.Equal(t, domain.StepWebDomain, warnings[1].Step)
	lookup.AssertNotCalled(t, "FindPartnerByEmailDomain", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolvePartner_CreateIfMissingSignals(t *testing.T) {
	lookup := new(mocks.MockRecordLookup)
	scope := newScope()

	doc := &domain.ExtractedDocument{MerchantName: strp("Nobody")}

	lookup.On("SupportsCocNumber").Return(false)
	lookup.On("FindPartnerByName", mock.Anything, scope, "Nobody").Return(nil, domain.ErrNotFound)

	got, warnings, err := resolve.New(lookup).ResolvePartner(context.Background(), doc, scope, resolve.Options{CreateIfMissing: true})

	require.NoError(t, err)
	assert.Nil(t, got)
	require.Len(t, warnings, 2)
	assert.Equal(t, domain.StepMerchantName, warnings[0].Step)
	assert.Equal(t, domain.StepPartnerCreate, warnings[1].Step)
}

func TestResolveBankAccount_RequiresPartner(t *testing.T) {
	lookup := new(mocks.MockRecordLookup)
	doc := &domain.ExtractedDocument{BankAccountNumber: strp("NL02 ABNA 0123 4567 89")}

	got, warnings, err := resolve.New(lookup).ResolveBankAccount(context.Background(), doc, nil, newScope(), resolve.Options{})

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, warnings)
	lookup.AssertNotCalled(t, "FindBankAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveBankAccount_SanitizedMatch(t *testing.T) {
	lookup := new(mocks.MockRecordLookup)
	scope := newScope()
	partner := &domain.Partner{ID: uuid.New()}
	want := &domain.BankAccount{ID: uuid.New(), PartnerID: partner.ID, SanitizedNumber: "NL02ABNA0123456789"}

	doc := &domain.ExtractedDocument{BankAccountNumber: strp("nl02 abna 0123 4567 89")}

	lookup.On("FindBankAccount", mock.Anything, scope, partner.ID, "NL02ABNA0123456789").Return(want, nil)

	got, warnings, err := resolve.New(lookup).ResolveBankAccount(context.Background(), doc, partner, scope, resolve.Options{})

	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Empty(t, warnings)
}

func TestResolveBankAccount_MissWarns(t *testing.T) {
	lookup := new(mocks.MockRecordLookup)
	scope := newScope()
	partner := &domain.Partner{ID: uuid.New()}

	doc := &domain.ExtractedDocument{BankAccountNumber: strp("NL02ABNA0123456789")}

	lookup.On("FindBankAccount", mock.Anything, scope, partner.ID, "NL02ABNA0123456789").Return(nil, domain.ErrNotFound)

	got, warnings, err := resolve.New(lookup).ResolveBankAccount(context.Background(), doc, partner, scope, resolve.Options{})

	require.NoError(t, err)
	assert.Nil(t, got)
	require.Len(t, warnings, 1)
	assert.Equal(t, domain.StepBankAccount, warnings[0].Step)
}

func TestResolveLineTax_ToleranceAtFourDecimals(t *testing.T) {
	lookup := new(mocks.MockRecordLookup)
	scope := newScope()
	tax := domain.Tax{
		ID:         uuid.New(),
		Name:       "VAT 21%",
		Kind:       domain.TaxKindPurchase,
		AmountType: domain.TaxAmountPercent,
		Amount:     decimal.RequireFromString("21.0000"),
	}

	lookup.On("FindTaxCandidates", mock.Anything, scope, mock.Anything).Return([]domain.Tax{tax}, nil)

	t.Run("within tolerance", func(t *testing.T) {
		line := &domain.LineItem{VatPercentage: decp("21.00003")}
		got, warnings, err := resolve.New(lookup).ResolveLineTax(context.Background(), line, 0, scope, resolve.Options{})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, tax.ID, got.ID)
		assert.Empty(t, warnings)
	})

	t.Run("outside tolerance", func(t *testing.T) {
		line := &domain.LineItem{VatPercentage: decp("20.9990")}
		got, warnings, err := resolve.New(lookup).ResolveLineTax(context.Background(), line, 3, scope, resolve.Options{})
		require.NoError(t, err)
		assert.Nil(t, got)
		require.Len(t, warnings, 1)
		assert.Equal(t, domain.StepLineTax, warnings[0].Step)
		assert.Equal(t, 3, warnings[0].Line)
	})
}

func TestResolveLineTax_AbsentPercentageComparesAsZero(t *testing.T) {
	lookup := new(mocks.MockRecordLookup)
	scope := newScope()
	zero := domain.Tax{
		ID:         uuid.New(),
		Name:       "VAT 0",
		Kind:       domain.TaxKindPurchase,
		AmountType: domain.TaxAmountFixed,
		Amount:     decimal.Zero,
	}

	lookup.On("FindTaxCandidates", mock.Anything, scope, mock.MatchedBy(func(q port.TaxQuery) bool {
		return q.CodeLike == "EXEMPT" && q.PercentageLike == ""
	})).Return([]domain.Tax{zero}, nil)

	line := &domain.LineItem{VatCode: strp("EXEMPT")}
	got, warnings, err := resolve.New(lookup).ResolveLineTax(context.Background(), line, 0, scope, resolve.Options{})

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, zero.ID, got.ID)
	assert.Empty(t, warnings)
}

func TestResolveLineTax_SkippedWithoutHints(t *testing.T) {
	lookup := new(mocks.MockRecordLookup)

	line := &domain.LineItem{Title: strp("Shipping")}
	got, warnings, err := resolve.New(lookup).ResolveLineTax(context.Background(), line, 0, newScope(), resolve.Options{})

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, warnings)
	lookup.AssertNotCalled(t, "FindTaxCandidates", mock.Anything, mock.Anything, mock.Anything)
}
