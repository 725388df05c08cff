package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"billscan/internal/domain"
	"billscan/internal/port"
)

// partnerOrder keeps ambiguous matches deterministic: established suppliers
// first, then creation order.
const partnerOrder = " ORDER BY supplier_rank DESC, id LIMIT 1"

type recordLookupRepo struct {
	db *sqlx.DB
}

// NewRecordLookupRepo creates a PostgreSQL-backed RecordLookup. Every partner
// query carries the company scope predicate: records belong to the scope's
// effective company or are global (company_id IS NULL). Rows owned by other
// companies are unreachable by construction.
func NewRecordLookupRepo(db *sqlx.DB) port.RecordLookup {
	return &recordLookupRepo{db: db}
}

func (r *recordLookupRepo) SupportsCocNumber() bool {
	return true
}

// scopeClause renders the company (and optional country) predicate starting
// at placeholder $1 and returns the corresponding args.
func scopeClause(scope domain.MatchScope) (string, []interface{}) {
	clause := "(company_id = $1 OR company_id IS NULL)"
	args := []interface{}{scope.EffectiveCompany()}
	if scope.CountryID != nil {
		clause += " AND (country_id IS NULL OR country_id = $2)"
		args = append(args, *scope.CountryID)
	}
	return clause, args
}

func (r *recordLookupRepo) findPartner(ctx context.Context, scope domain.MatchScope, predicate string, value interface{}) (*domain.Partner, error) {
	clause, args := scopeClause(scope)
	query := fmt.Sprintf(
		"SELECT * FROM partners WHERE %s AND %s%s",
		clause, fmt.Sprintf(predicate, len(args)+1), partnerOrder)
	args = append(args, value)

	var p domain.Partner
	err := r.db.GetContext(ctx, &p, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("recordLookupRepo.findPartner: %w", err)
	}
	return &p, nil
}

func (r *recordLookupRepo) FindPartnerByCocNumber(ctx context.Context, scope domain.MatchScope, coc string) (*domain.Partner, error) {
	return r.findPartner(ctx, scope, "coc_number = $%d", coc)
}

func (r *recordLookupRepo) FindPartnerByVat(ctx context.Context, scope domain.MatchScope, vat string) (*domain.Partner, error) {
	return r.findPartner(ctx, scope, "parent_id IS NULL AND vat = $%d", vat)
}

func (r *recordLookupRepo) FindPartnerByEmail(ctx context.Context, scope domain.MatchScope, email string) (*domain.Partner, error) {
	return r.findPartner(ctx, scope, "email ILIKE $%d", email)
}

func (r *recordLookupRepo) FindPartnerByWebsiteDomain(ctx context.Context, scope domain.MatchScope, dom string) (*domain.Partner, error) {
	return r.findPartner(ctx, scope, "website ILIKE '%%' || $%d || '%%'", dom)
}

func (r *recordLookupRepo) FindPartnerByEmailDomain(ctx context.Context, scope domain.MatchScope, dom string) (*domain.Partner, error) {
	return r.findPartner(ctx, scope, "email ILIKE '%%@' || $%d", dom)
}

func (r *recordLookupRepo) FindPartnerByRef(ctx context.Context, scope domain.MatchScope, ref string) (*domain.Partner, error) {
	return r.findPartner(ctx, scope, "ref = $%d", ref)
}

func (r *recordLookupRepo) FindPartnerByName(ctx context.Context, scope domain.MatchScope, name string) (*domain.Partner, error) {
	return r.findPartner(ctx, scope, "name ILIKE $%d", name)
}

func (r *recordLookupRepo) FindPartnerByPhone(ctx context.Context, scope domain.MatchScope, phone string) (*domain.Partner, error) {
	return r.findPartner(ctx, scope, "phone = $%d", phone)
}

func (r *recordLookupRepo) FindBankAccount(ctx context.Context, scope domain.MatchScope, partnerID uuid.UUID, sanitized string) (*domain.BankAccount, error) {
	var account domain.BankAccount
	err := r.db.GetContext(ctx, &account,
		`SELECT * FROM bank_accounts
		 WHERE partner_id = $1 AND sanitized_number = $2
		   AND (company_id = $3 OR company_id IS NULL)
		 ORDER BY id LIMIT 1`,
		partnerID, sanitized, scope.EffectiveCompany())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("recordLookupRepo.FindBankAccount: %w", err)
	}
	return &account, nil
}

func (r *recordLookupRepo) FindTaxCandidates(ctx context.Context, scope domain.MatchScope, q port.TaxQuery) ([]domain.Tax, error) {
	query := `SELECT * FROM taxes
		WHERE (company_id = $1 OR company_id IS NULL) AND kind = $2`
	args := []interface{}{scope.EffectiveCompany(), q.Kind}

	if q.PriceInclude != nil {
		args = append(args, *q.PriceInclude)
		query += fmt.Sprintf(" AND price_include = $%d", len(args))
	}
	if q.PercentageLike != "" {
		args = append(args, q.PercentageLike, domain.TaxAmountPercent)
		query += fmt.Sprintf(" AND description ILIKE '%%' || $%d || '%%' AND amount_type = $%d", len(args)-1, len(args))
	}
	if q.CodeLike != "" {
		args = append(args, q.CodeLike, domain.TaxAmountFixed)
		query += fmt.Sprintf(" AND name ILIKE '%%' || $%d || '%%' AND amount_type = $%d", len(args)-1, len(args))
	}
	query += " ORDER BY sequence, id"

	var taxes []domain.Tax
	if err := r.db.SelectContext(ctx, &taxes, query, args...); err != nil {
		return nil, fmt.Errorf("recordLookupRepo.FindTaxCandidates: %w", err)
	}
	return taxes, nil
}

func (r *recordLookupRepo) FindCountryByCode(ctx context.Context, code string) (*domain.Country, error) {
	var country domain.Country
	err := r.db.GetContext(ctx, &country,
		"SELECT * FROM countries WHERE code ILIKE $1", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("recordLookupRepo.FindCountryByCode: %w", err)
	}
	return &country, nil
}

func (r *recordLookupRepo) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	var currency domain.Currency
	err := r.db.GetContext(ctx, &currency,
		"SELECT * FROM currencies WHERE code ILIKE $1", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("recordLookupRepo.FindCurrencyByCode: %w", err)
	}
	return &currency, nil
}

func (r *recordLookupRepo) FindProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.GetContext(ctx, &product,
		"SELECT * FROM products WHERE barcode = $1 ORDER BY id LIMIT 1", barcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("recordLookupRepo.FindProductByBarcode: %w", err)
	}
	return &product, nil
}
