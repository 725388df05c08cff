package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"billscan/internal/domain"
	"billscan/internal/port"
)

type attachmentRepo struct {
	db *sqlx.DB
}

// NewAttachmentRepo creates a PostgreSQL-backed AttachmentRepository.
func NewAttachmentRepo(db *sqlx.DB) port.AttachmentRepository {
	return &attachmentRepo{db: db}
}

func (r *attachmentRepo) GetByID(ctx context.Context, attachmentID uuid.UUID) (*domain.Attachment, error) {
	var att domain.Attachment
	err := r.db.GetContext(ctx, &att,
		"SELECT * FROM attachments WHERE id = $1", attachmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("attachmentRepo.GetByID: %w", err)
	}
	return &att, nil
}

func (r *attachmentRepo) GetMain(ctx context.Context, billID uuid.UUID) (*domain.Attachment, error) {
	var att domain.Attachment
	err := r.db.GetContext(ctx, &att,
		`SELECT * FROM attachments WHERE bill_id = $1 AND is_main = TRUE
		 ORDER BY created_at LIMIT 1`, billID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("attachmentRepo.GetMain: %w", err)
	}
	return &att, nil
}

func (r *attachmentRepo) FindFirstPDF(ctx context.Context, billID uuid.UUID) (*domain.Attachment, error) {
	var att domain.Attachment
	err := r.db.GetContext(ctx, &att,
		`SELECT * FROM attachments WHERE bill_id = $1 AND mime_type = 'application/pdf'
		 ORDER BY created_at LIMIT 1`, billID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("attachmentRepo.FindFirstPDF: %w", err)
	}
	return &att, nil
}

func (r *attachmentRepo) Create(ctx context.Context, att *domain.Attachment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attachments (id, bill_id, mime_type, storage_bucket, storage_key, is_main)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		att.ID, att.BillID, att.MimeType, att.StorageBucket, att.StorageKey, att.IsMain)
	if err != nil {
		return fmt.Errorf("attachmentRepo.Create: %w", err)
	}
	return nil
}

func (r *attachmentRepo) Delete(ctx context.Context, attachmentID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM attachments WHERE id = $1", attachmentID)
	if err != nil {
		return fmt.Errorf("attachmentRepo.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("attachmentRepo.Delete rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *attachmentRepo) SaveParsedContent(ctx context.Context, attachmentID uuid.UUID, parsed json.RawMessage, rawText string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE attachments SET parsed_content = $1, raw_text = $2 WHERE id = $3",
		parsed, rawText, attachmentID)
	if err != nil {
		return fmt.Errorf("attachmentRepo.SaveParsedContent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("attachmentRepo.SaveParsedContent rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
