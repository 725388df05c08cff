// Package reconcile turns one extracted document into a draft vendor
// invoice. It owns the document type gate, header canonicalization and line
// mapping; entity matching is delegated to the resolver.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"

	"billscan/internal/domain"
	"billscan/internal/normalize"
	"billscan/internal/port"
	"billscan/internal/resolve"
)

// Reconciler builds draft invoices from extracted documents.
type Reconciler struct {
	lookup   port.RecordLookup
	resolver *resolve.Resolver
}

// New creates a Reconciler. The resolver shares the lookup adapter.
func New(lookup port.RecordLookup) *Reconciler {
	return &Reconciler{lookup: lookup, resolver: resolve.New(lookup)}
}

// Reconcile maps one extracted document to a draft invoice plus the
// resolution outcome. The document type is checked before any lookup runs:
// a non-invoice scan fails fast with ErrUnsupportedDocumentType. Malformed
// dates abort the whole reconciliation; unresolved entities never do, they
// only accumulate warnings.
func (r *Reconciler) Reconcile(ctx context.Context, doc *domain.ExtractedDocument, scope domain.MatchScope, opts resolve.Options) (*domain.DraftInvoice, *domain.ResolutionResult, error) {
	if doc.DocumentType != domain.DocumentTypeInvoice {
		return nil, nil, fmt.Errorf("document type %q: %w", doc.DocumentType, domain.ErrUnsupportedDocumentType)
	}

	invoiceDate, err := normalize.ParseDate(doc.InvoiceDate, domain.LayoutDateTime)
	if err != nil {
		return nil, nil, fmt.Errorf("invoice date: %w", err)
	}
	dueDate, err := normalize.ParseDate(doc.DueDate, domain.LayoutDateTime)
	if err != nil {
		return nil, nil, fmt.Errorf("due date: %w", err)
	}
	purchaseDate, err := normalize.ParseDate(doc.PurchaseDate, domain.LayoutDate)
	if err != nil {
		return nil, nil, fmt.Errorf("purchase date: %w", err)
	}

	result := &domain.ResolutionResult{}

	partner, warnings, err := r.resolver.ResolvePartner(ctx, doc, scope, opts)
	if err != nil {
		return nil, nil, err
	}
	result.Partner = partner
	result.Warnings = append(result.Warnings, warnings...)

	account, warnings, err := r.resolver.ResolveBankAccount(ctx, doc, partner, scope, opts)
	if err != nil {
		return nil, nil, err
	}
	result.BankAccount = account
	result.Warnings = append(result.Warnings, warnings...)

	currency := r.resolveCurrency(ctx, doc, result)

	draft := &domain.DraftInvoice{
		Partner:      partner,
		BankAccount:  account,
		Currency:     currency,
		InvoiceDate:  invoiceDate,
		DueDate:      dueDate,
		PurchaseDate: purchaseDate,
	}
	if doc.InvoiceNumber != nil {
		draft.Reference = *doc.InvoiceNumber
	}

	result.LineTaxes = make([]*domain.Tax, len(doc.LineItems))
	for i := range doc.LineItems {
		line, err := r.mapLine(ctx, &doc.LineItems[i], i, scope, opts, result)
		if err != nil {
			return nil, nil, err
		}
		draft.Lines = append(draft.Lines, line)
	}

	return draft, result, nil
}

// resolveCurrency looks up the extracted currency code. A miss leaves the
// draft currency unset so the bill keeps its company default.
func (r *Reconciler) resolveCurrency(ctx context.Context, doc *domain.ExtractedDocument, result *domain.ResolutionResult) *domain.Currency {
	if doc.Currency == nil || *doc.Currency == "" {
		return nil
	}
	currency, err := r.lookup.FindCurrencyByCode(ctx, *doc.Currency)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Printf("Reconciler.resolveCurrency: lookup failed for %q: %v", *doc.Currency, err)
		}
		result.Warnings = append(result.Warnings, domain.UnresolvedSignal{
			Step:   domain.StepCurrency,
			Line:   domain.HeaderLine,
			Detail: fmt.Sprintf("unknown currency code %q", *doc.Currency),
		})
		return nil
	}
	return currency
}

func (r *Reconciler) mapLine(ctx context.Context, item *domain.LineItem, idx int, scope domain.MatchScope, opts resolve.Options, result *domain.ResolutionResult) (domain.DraftLine, error) {
	line := domain.DraftLine{Description: item.Label()}

	if item.Quantity != nil {
		line.Quantity = *item.Quantity
	}
	if price := normalize.MinorToDecimal(item.AmountEachMinor); price != nil {
		line.UnitPrice = *price
	}

	if item.SKU != nil && *item.SKU != "" {
		product, err := r.lookup.FindProductByBarcode(ctx, *item.SKU)
		switch {
		case err == nil:
			line.Product = product
		case errors.Is(err, domain.ErrNotFound):
			result.Warnings = append(result.Warnings, domain.UnresolvedSignal{
				Step:   domain.StepProduct,
				Line:   idx,
				Detail: fmt.Sprintf("no product with barcode %q", *item.SKU),
			})
		default:
			return line, fmt.Errorf("product lookup: %w", err)
		}
	}

	tax, warnings, err := r.resolver.ResolveLineTax(ctx, item, idx, scope, opts)
	if err != nil {
		return line, err
	}
	line.Tax = tax
	result.LineTaxes[idx] = tax
	result.Warnings = append(result.Warnings, warnings...)

	return line, nil
}
