package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nxzen/ticketdesk/internal/domain"
)

// AttachmentRepository persists attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	GetByID(ctx context.Context, id string) (*domain.Attachment, error)
	ListByUpdate(ctx context.Context, updateID string) ([]domain.Attachment, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (update_id, storage_key, filename, mime_type, size)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, uploaded`
	return r.pool.QueryRow(ctx, query,
		attachment.UpdateID,
		attachment.StorageKey,
		attachment.Filename,
		attachment.MimeType,
		attachment.Size,
	).Scan(&attachment.ID, &attachment.Uploaded)
}

func (r *attachmentRepository) GetByID(ctx context.Context, id string) (*domain.Attachment, error) {
	const query = `
        SELECT id, update_id, storage_key, filename, mime_type, size, uploaded
        FROM attachments WHERE id=$1`
	var attachment domain.Attachment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&attachment.ID,
		&attachment.UpdateID,
		&attachment.StorageKey,
		&attachment.Filename,
		&attachment.MimeType,
		&attachment.Size,
		&attachment.Uploaded,
	); err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) ListByUpdate(ctx context.Context, updateID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, update_id, storage_key, filename, mime_type, size, uploaded
        FROM attachments WHERE update_id=$1 ORDER BY filename`
	rows, err := r.pool.Query(ctx, query, updateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		var attachment domain.Attachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.UpdateID,
			&attachment.StorageKey,
			&attachment.Filename,
			&attachment.MimeType,
			&attachment.Size,
			&attachment.Uploaded,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}
