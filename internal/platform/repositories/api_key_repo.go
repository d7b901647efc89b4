package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"hookd/internal/platform/models"
)

type APIKeyRepository struct {
	db *sql.DB
}

func NewAPIKeyRepository(db *sql.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	if key.ID == "" {
		key.ID = "key_" + uuid.New().String()
	}
	key.CreatedAt = time.Now().Unix()

	query := `
		INSERT INTO api_keys (id, tenant_id, name, key_prefix, key_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, key.ID, key.TenantID, key.Name, key.KeyPrefix, key.KeyHash, key.CreatedAt)
	return err
}

// GetByPrefix returns candidate keys sharing a prefix. The caller compares
// the presented key against each stored hash; the prefix only narrows the
// lookup, it is not a credential.
func (r *APIKeyRepository) GetByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	query := `SELECT id, tenant_id, name, key_prefix, key_hash, created_at, revoked_at
		FROM api_keys WHERE key_prefix = ?`
	rows, err := r.db.QueryContext(ctx, query, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (r *APIKeyRepository) ListByTenant(ctx context.Context, tenantID string) ([]*models.APIKey, error) {
	query := `SELECT id, tenant_id, name, key_prefix, key_hash, created_at, revoked_at
		FROM api_keys WHERE tenant_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (r *APIKeyRepository) Revoke(ctx context.Context, tenantID, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE api_keys SET revoked_at = ? WHERE tenant_id = ? AND id = ? AND revoked_at IS NULL`,
		time.Now().Unix(), tenantID, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanAPIKey(row rowScanner) (*models.APIKey, error) {
	var key models.APIKey
	var revokedAt sql.NullInt64

	err := row.Scan(&key.ID, &key.TenantID, &key.Name, &key.KeyPrefix, &key.KeyHash, &key.CreatedAt, &revokedAt)
	if err != nil {
		return nil, err
	}

	if revokedAt.Valid {
		key.RevokedAt = new(int64)
		*key.RevokedAt = revokedAt.Int64
	}
	return &key, nil
}
