package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"hookd/internal/platform/models"
)

type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	sub.ID = "sub_" + uuid.New().String()
	sub.CreatedAt = time.Now().Unix()
	sub.UpdatedAt = sub.CreatedAt

	eventsJSON, err := json.Marshal(sub.Events)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO webhook_subscriptions (id, tenant_id, url, events, secret, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query, sub.ID, sub.TenantID, sub.URL, string(eventsJSON), sub.Secret, sub.IsActive, sub.CreatedAt, sub.UpdatedAt)
	return err
}

// GetByID is tenant-scoped: a subscription belonging to another tenant is
// indistinguishable from a missing one.
func (r *SubscriptionRepository) GetByID(ctx context.Context, tenantID, id string) (*models.Subscription, error) {
	query := `SELECT id, tenant_id, url, events, secret, is_active, created_at, updated_at
		FROM webhook_subscriptions WHERE tenant_id = ? AND id = ?`
	return scanSubscription(r.db.QueryRowContext(ctx, query, tenantID, id))
}

func (r *SubscriptionRepository) ListByTenant(ctx context.Context, tenantID string) ([]*models.Subscription, error) {
	query := `SELECT id, tenant_id, url, events, secret, is_active, created_at, updated_at
		FROM webhook_subscriptions WHERE tenant_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// ActiveByTenant returns only active subscriptions for one tenant. The
// tenant_id predicate is the isolation boundary; event matching happens in
// the resolver because events are stored as a JSON array.
func (r *SubscriptionRepository) ActiveByTenant(ctx context.Context, tenantID string) ([]*models.Subscription, error) {
	query := `SELECT id, tenant_id, url, events, secret, is_active, created_at, updated_at
		FROM webhook_subscriptions WHERE tenant_id = ? AND is_active = 1`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *SubscriptionRepository) Update(ctx context.Context, sub *models.Subscription) error {
	eventsJSON, err := json.Marshal(sub.Events)
	if err != nil {
		return err
	}
	sub.UpdatedAt = time.Now().Unix()

	query := `
		UPDATE webhook_subscriptions
		SET url = ?, events = ?, is_active = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`
	res, err := r.db.ExecContext(ctx, query, sub.URL, string(eventsJSON), sub.IsActive, sub.UpdatedAt, sub.TenantID, sub.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, tenantID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM webhook_subscriptions WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	var sub models.Subscription
	var eventsStr string

	err := row.Scan(&sub.ID, &sub.TenantID, &sub.URL, &eventsStr, &sub.Secret, &sub.IsActive, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(eventsStr), &sub.Events); err != nil {
		return nil, err
	}
	return &sub, nil
}
