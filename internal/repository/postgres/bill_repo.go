package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"billscan/internal/domain"
	"billscan/internal/port"
)

type billRepo struct {
	db *sqlx.DB
}

// NewBillRepo creates a PostgreSQL-backed BillStore.
func NewBillRepo(db *sqlx.DB) port.BillStore {
	return &billRepo{db: db}
}

func (r *billRepo) GetByID(ctx context.Context, companyID, billID uuid.UUID) (*domain.VendorBill, error) {
	var bill domain.VendorBill
	err := r.db.GetContext(ctx, &bill,
		"SELECT * FROM vendor_bills WHERE id = $1 AND company_id = $2", billID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("billRepo.GetByID: %w", err)
	}
	return &bill, nil
}

// ApplyDraft replaces the bill header fields and all lines in one
// transaction. Nothing is committed on failure.
func (r *billRepo) ApplyDraft(ctx context.Context, companyID, billID uuid.UUID, draft *domain.DraftInvoice) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("billRepo.ApplyDraft begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var partnerID, bankAccountID, currencyID *uuid.UUID
	if draft.Partner != nil {
		partnerID = &draft.Partner.ID
	}
	if draft.BankAccount != nil {
		bankAccountID = &draft.BankAccount.ID
	}
	if draft.Currency != nil {
		currencyID = &draft.Currency.ID
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE vendor_bills SET
			partner_id = COALESCE($1, partner_id),
			bank_account_id = $2,
			currency_id = COALESCE($3, currency_id),
			invoice_date = $4,
			due_date = $5,
			purchase_date = $6,
			reference = CASE WHEN $7 <> '' THEN $7 ELSE reference END,
			updated_at = $8
		 WHERE id = $9 AND company_id = $10 AND state = $11`,
		partnerID, bankAccountID, currencyID,
		draft.InvoiceDate, draft.DueDate, draft.PurchaseDate,
		draft.Reference, time.Now().UTC(),
		billID, companyID, domain.BillStateDraft)
	if err != nil {
		return fmt.Errorf("billRepo.ApplyDraft update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("billRepo.ApplyDraft rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrBillNotEditable
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM bill_lines WHERE bill_id = $1", billID); err != nil {
		return fmt.Errorf("billRepo.ApplyDraft delete lines: %w", err)
	}

	for i, line := range draft.Lines {
		var productID, taxID *uuid.UUID
		if line.Product != nil {
			productID = &line.Product.ID
		}
		if line.Tax != nil {
			taxID = &line.Tax.ID
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bill_lines (
				id, bill_id, sequence, product_id, description,
				quantity, unit_price, tax_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New(), billID, i, productID, line.Description,
			line.Quantity, line.UnitPrice, taxID); err != nil {
			return fmt.Errorf("billRepo.ApplyDraft insert line %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("billRepo.ApplyDraft commit: %w", err)
	}
	return nil
}
