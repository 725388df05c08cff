// Package resolve implements the identity-matching cascade: a fixed,
// priority-ordered sequence of independent heuristics that maps noisy
// extracted merchant fields to a single partner, bank account and per-line
// tax within one company scope. The first step that finds a unique
// candidate wins; later steps are never consulted. Legal identity numbers
// run first, free-text name and phone last, to keep false positives out.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"billscan/internal/domain"
	"billscan/internal/normalize"
	"billscan/internal/port"
)

// Options tunes one resolution run.
type Options struct {
	// CreateIfMissing asks the resolver to create missing reference data.
	// Creation is an unsupported capability: when set, every unresolved
	// entity gains an extra *_create signal instead of being silently
	// ignored.
	CreateIfMissing bool
	// PriceInclude restricts tax candidates to price-inclusive (true) or
	// price-exclusive (false) codes; nil matches either.
	PriceInclude *bool
}

// Resolver matches extracted fields against the system of record.
type Resolver struct {
	lookup port.RecordLookup
}

// New creates a Resolver over a record lookup adapter.
func New(lookup port.RecordLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// partnerStep is one heuristic of the cascade. run returns the matched
// partner, whether the step actually ran (inputs present), and a lookup
// error other than a miss. Misses surface as (nil, true, nil).
type partnerStep struct {
	step domain.MatchStep
	run  func(ctx context.Context, scope *domain.MatchScope) (*domain.Partner, bool, error)
}

// ResolvePartner runs the partner cascade. A step with missing input is
// skipped silently; a step that ran and found nothing is recorded as an
// unresolved signal. The country step never matches a partner itself, it
// only narrows the scope for every step after it.
func (r *Resolver) ResolvePartner(ctx context.Context, doc *domain.ExtractedDocument, scope domain.MatchScope, opts Options) (*domain.Partner, []domain.UnresolvedSignal, error) {
	var warnings []domain.UnresolvedSignal

	// Remembered across steps: the email's domain part, derived only after
	// an exact email match failed.
	var emailDomain string

	steps := []partnerStep{
		{domain.StepCocNumber, func(ctx context.Context, scope *domain.MatchScope) (*domain.Partner, bool, error) {
			if !r.lookup.SupportsCocNumber() || strptr(doc.CocNumber) == "" {
				return nil, false, nil
			}
			return r.single(r.lookup.FindPartnerByCocNumber(ctx, *scope, *doc.CocNumber))
		}},
		{domain.StepCountryCode, func(ctx context.Context, scope *domain.MatchScope) (*domain.Partner, bool, error) {
			if strptr(doc.CountryCode) == "" {
				return nil, false, nil
			}
			country, err := r.lookup.FindCountryByCode(ctx, *doc.CountryCode)
			if errors.Is(err, domain.ErrNotFound) {
				return nil, true, nil
			}
			if err != nil {
				return nil, true, err
			}
			*scope = scope.WithCountry(country.ID)
			return nil, false, nil
		}},
		{domain.StepVatNumber, func(ctx context.Context, scope *domain.MatchScope) (*domain.Partner, bool, error) {
			if strptr(doc.VatNumber) == "" {
				return nil, false, nil
			}
			return r.single(r.lookup.FindPartnerByVat(ctx, *scope, normalize.VAT(*doc.VatNumber)))
		}},
		{domain.StepEmail, func(ctx context.Context, scope *domain.MatchScope) (*domain.Partner, bool, error) {
			email := strptr(doc.Email)
			if !strings.Contains(email, "@") {
				return nil, false, nil
			}
			p, attempted, err := r.single(r.lookup.FindPartnerByEmail(ctx, *scope, email))
			if p == nil && err == nil {
				emailDomain, _ = normalize.EmailDomain(email)
			}
			return p, attempted, err
		}},
		{domain.StepWebDomain, func(ctx context.Context, scope *domain.MatchScope) (*domain.Partner, bool, error) {
			var websiteDomain string
			if strptr(doc.Website) != "" {
				websiteDomain, _ = normalize.RegistrableDomain(*doc.Website)
			}
			dom := websiteDomain
			if dom == "" {
				dom = emailDomain
			}
			if dom == "" {
				return nil, false, nil
			}
			p, attempted, err := r.single(r.lookup.FindPartnerByWebsiteDomain(ctx, *scope, dom))
			if p != nil || err != nil {
				return p, attempted, err
			}
			// Stored-email fallback only for a website-derived domain: a
			// free-mail domain taken from the merchant email (gmail.com,
			// yahoo.com) would match unrelated partners.
			if websiteDomain != "" {
				return r.single(r.lookup.FindPartnerByEmailDomain(ctx, *scope, websiteDomain))
			}
			return nil, true, nil
		}},
		{domain.StepMerchantRef, func(ctx context.Context, scope *domain.MatchScope) (*domain.Partner, bool, error) {
			if strptr(doc.MerchantRef) == "" {
				return nil, false, nil
			}
			return r.single(r.lookup.FindPartnerByRef(ctx, *scope, *doc.MerchantRef))
		}},
		{domain.StepMerchantName, func(ctx context.Context, scope *domain.MatchScope) (*domain.Partner, bool, error) {
			if strptr(doc.MerchantName) == "" {
				return nil, false, nil
			}
			return r.single(r.lookup.FindPartnerByName(ctx, *scope, *doc.MerchantName))
		}},
		{domain.StepPhone, func(ctx context.Context, scope *domain.MatchScope) (*domain.Partner, bool, error) {
			if strptr(doc.Phone) == "" {
				return nil, false, nil
			}
			return r.single(r.lookup.FindPartnerByPhone(ctx, *scope, *doc.Phone))
		}},
	}

	for _, s := range steps {
		partner, attempted, err := s.run(ctx, &scope)
		if err != nil {
			return nil, warnings, fmt.Errorf("partner step %s: %w", s.step, err)
		}
		if partner != nil {
			return partner, warnings, nil
		}
		if attempted {
			warnings = append(warnings, domain.UnresolvedSignal{
				Step:   s.step,
				Line:   domain.HeaderLine,
				Detail: fmt.Sprintf("no partner matched on %s", s.step),
			})
		}
	}

	if opts.CreateIfMissing {
		warnings = append(warnings, domain.UnresolvedSignal{
			Step:   domain.StepPartnerCreate,
			Line:   domain.HeaderLine,
			Detail: "partner creation requested but not supported",
		})
	}
	return nil, warnings, nil
}

// ResolveBankAccount matches the extracted bank account number against the
// resolved partner's accounts. Without a partner the step is skipped: an
// account number alone is never identifying enough.
func (r *Resolver) ResolveBankAccount(ctx context.Context, doc *domain.ExtractedDocument, partner *domain.Partner, scope domain.MatchScope, opts Options) (*domain.BankAccount, []domain.UnresolvedSignal, error) {
	if partner == nil || strptr(doc.BankAccountNumber) == "" {
		return nil, nil, nil
	}
	sanitized := normalize.IBAN(*doc.BankAccountNumber)
	account, err := r.lookup.FindBankAccount(ctx, scope, partner.ID, sanitized)
	if errors.Is(err, domain.ErrNotFound) {
		warnings := []domain.UnresolvedSignal{{
			Step:   domain.StepBankAccount,
			Line:   domain.HeaderLine,
			Detail: fmt.Sprintf("no bank account %s for partner %s", sanitized, partner.ID),
		}}
		if opts.CreateIfMissing {
			warnings = append(warnings, domain.UnresolvedSignal{
				Step:   domain.StepBankCreate,
				Line:   domain.HeaderLine,
				Detail: "bank account creation requested but not supported",
			})
		}
		return nil, warnings, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("bank account lookup: %w", err)
	}
	return account, nil, nil
}

// ResolveLineTax picks the purchase tax for one line item. Candidates are
// filtered by the structural hints (percentage => percent-typed taxes whose
// description mentions the percentage, code => fixed-typed taxes whose name
// mentions the code), then the winner must equal the extracted percentage
// to 4 decimal places. An absent percentage compares as zero. No numeric
// match means no tax, never a guess.
func (r *Resolver) ResolveLineTax(ctx context.Context, line *domain.LineItem, lineIdx int, scope domain.MatchScope, opts Options) (*domain.Tax, []domain.UnresolvedSignal, error) {
	if line.VatPercentage == nil && strptr(line.VatCode) == "" {
		return nil, nil, nil
	}

	q := port.TaxQuery{Kind: domain.TaxKindPurchase, PriceInclude: opts.PriceInclude}
	if line.VatPercentage != nil {
		q.PercentageLike = line.VatPercentage.String()
	}
	if strptr(line.VatCode) != "" {
		q.CodeLike = *line.VatCode
	}

	candidates, err := r.lookup.FindTaxCandidates(ctx, scope, q)
	if err != nil {
		return nil, nil, fmt.Errorf("tax candidates: %w", err)
	}

	want := decimal.Zero
	if line.VatPercentage != nil {
		want = *line.VatPercentage
	}
	for i := range candidates {
		if candidates[i].Amount.Round(4).Equal(want.Round(4)) {
			return &candidates[i], nil, nil
		}
	}

	warnings := []domain.UnresolvedSignal{{
		Step:   domain.StepLineTax,
		Line:   lineIdx,
		Detail: fmt.Sprintf("no purchase tax matching %s among %d candidates", want.String(), len(candidates)),
	}}
	if opts.CreateIfMissing {
		warnings = append(warnings, domain.UnresolvedSignal{
			Step:   domain.StepTaxCreate,
			Line:   lineIdx,
			Detail: "tax creation requested but not supported",
		})
	}
	return nil, warnings, nil
}

// single adapts a single-result lookup: a miss becomes (nil, attempted, nil).
func (r *Resolver) single(p *domain.Partner, err error) (*domain.Partner, bool, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return nil, true, nil
	}
	if err != nil {
		return nil, true, err
	}
	return p, true, nil
}

func strptr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
