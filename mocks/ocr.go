package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billscan/internal/port"
)

// MockInvoiceParser is a mock implementation of port.InvoiceParser.
type MockInvoiceParser struct {
	mock.Mock
}

func (m *MockInvoiceParser) ParseInvoice(ctx context.Context, fileBytes []byte) (*port.ParseResult, error) {
	args := m.Called(ctx, fileBytes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ParseResult), args.Error(1)
}

// MockCreditClient is a mock implementation of port.CreditClient.
type MockCreditClient struct {
	mock.Mock
}

func (m *MockCreditClient) CreditBalance(ctx context.Context, kind string) (int, error) {
	args := m.Called(ctx, kind)
	return args.Int(0), args.Error(1)
}
