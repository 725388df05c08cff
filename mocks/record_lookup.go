package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"billscan/internal/domain"
	"billscan/internal/port"
)

// MockRecordLookup is a mock implementation of port.RecordLookup.
type MockRecordLookup struct {
	mock.Mock
}

func (m *MockRecordLookup) SupportsCocNumber() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockRecordLookup) FindPartnerByCocNumber(ctx context.Context, scope domain.MatchScope, coc string) (*domain.Partner, error) {
	args := m.Called(ctx, scope, coc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Partner), args.Error(1)
}

func (m *MockRecordLookup) FindPartnerByVat(ctx context.Context, scope domain.MatchScope, vat string) (*domain.Partner, error) {
	args := m.Called(ctx, scope, vat)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Partner), args.Error(1)
}

func (m *MockRecordLookup) FindPartnerByEmail(ctx context.Context, scope domain.MatchScope, email string) (*domain.Partner, error) {
	args := m.Called(ctx, scope, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Partner), args.Error(1)
}

func (m *MockRecordLookup) FindPartnerByWebsiteDomain(ctx context.Context, scope domain.MatchScope, dom string) (*domain.Partner, error) {
	args := m.Called(ctx, scope, dom)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Partner), args.Error(1)
}

func (m *MockRecordLookup) FindPartnerByEmailDomain(ctx context.Context, scope domain.MatchScope, dom string) (*domain.Partner, error) {
	args := m.Called(ctx, scope, dom)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Partner), args.Error(1)
}

func (m *MockRecordLookup) FindPartnerByRef(ctx context.Context, scope domain.MatchScope, ref string) (*domain.Partner, error) {
	args := m.Called(ctx, scope, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Partner), args.Error(1)
}

func (m *MockRecordLookup) FindPartnerByName(ctx context.Context, scope domain.MatchScope, name string) (*domain.Partner, error) {
	args := m.Called(ctx, scope, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Partner), args.Error(1)
}

func (m *MockRecordLookup) FindPartnerByPhone(ctx context.Context, scope domain.MatchScope, phone string) (*domain.Partner, error) {
	args := m.Called(ctx, scope, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Partner), args.Error(1)
}

func (m *MockRecordLookup) FindBankAccount(ctx context.Context, scope domain.MatchScope, partnerID uuid.UUID, sanitized string) (*domain.BankAccount, error) {
	args := m.Called(ctx, scope, partnerID, sanitized)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

func (m *MockRecordLookup) FindTaxCandidates(ctx context.Context, scope domain.MatchScope, q port.TaxQuery) ([]domain.Tax, error) {
	args := m.Called(ctx, scope, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tax), args.Error(1)
}

func (m *MockRecordLookup) FindCountryByCode(ctx context.Context, code string) (*domain.Country, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Country), args.Error(1)
}

func (m *MockRecordLookup) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockRecordLookup) FindProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
