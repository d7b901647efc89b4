package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"hookd/internal/platform/models"
)

type DeliveryLogRepository struct {
	db *sql.DB
}

func NewDeliveryLogRepository(db *sql.DB) *DeliveryLogRepository {
	return &DeliveryLogRepository{db: db}
}

// Record appends one delivery attempt. Rows are never updated or deleted by
// the dispatch path; only the retention worker removes old ones.
func (r *DeliveryLogRepository) Record(ctx context.Context, entry *models.DeliveryLog) error {
	if entry.ID == "" {
		entry.ID = "del_" + uuid.New().String()
	}
	entry.CreatedAt = time.Now().Unix()

	query := `
		INSERT INTO delivery_logs (id, webhook_id, event, payload, status_code, success, response_body, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.WebhookID, entry.Event, string(entry.Payload),
		entry.StatusCode, entry.Success,
		nullable(entry.ResponseBody), nullable(entry.ErrorMessage),
		entry.CreatedAt,
	)
	return err
}

func (r *DeliveryLogRepository) GetByID(ctx context.Context, id string) (*models.DeliveryLog, error) {
	query := `SELECT id, webhook_id, event, payload, status_code, success, response_body, error_message, created_at
		FROM delivery_logs WHERE id = ?`
	return scanDeliveryLog(r.db.QueryRowContext(ctx, query, id))
}

func (r *DeliveryLogRepository) ListByWebhook(ctx context.Context, webhookID string, limit int) ([]*models.DeliveryLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT id, webhook_id, event, payload, status_code, success, response_body, error_message, created_at
		FROM delivery_logs WHERE webhook_id = ? ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, webhookID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.DeliveryLog
	for rows.Next() {
		entry, err := scanDeliveryLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DeleteOlderThan prunes log rows created before the cutoff. Used by the
// retention worker.
func (r *DeliveryLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM delivery_logs WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanDeliveryLog(row rowScanner) (*models.DeliveryLog, error) {
	var entry models.DeliveryLog
	var payload string
	var responseBody sql.NullString
	var errorMessage sql.NullString

	err := row.Scan(&entry.ID, &entry.WebhookID, &entry.Event, &payload,
		&entry.StatusCode, &entry.Success, &responseBody, &errorMessage, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}

	entry.Payload = []byte(payload)
	if responseBody.Valid {
		entry.ResponseBody = responseBody.String
	}
	if errorMessage.Valid {
		entry.ErrorMessage = errorMessage.String
	}
	return &entry, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
