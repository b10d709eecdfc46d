package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/yldst-dev/anitime/internal/domain"
)

// storageKey est la clé unique sous laquelle le snapshot complet est persisté,
// équivalent de la clé localStorage du client d'origine.
const storageKey = "anime-subscriptions"

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Load(ctx context.Context) (domain.SubscriptionStorage, error) {
	var b []byte
	err := r.db.QueryRowContext(ctx, `SELECT value_json FROM kvstore WHERE key = ?`, storageKey).Scan(&b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Pas encore initialisé → snapshot vide.
			return domain.SubscriptionStorage{}, nil
		}
		return domain.SubscriptionStorage{}, err
	}
	var st domain.SubscriptionStorage
	if err := json.Unmarshal(b, &st); err != nil {
		// Si corrompu : fallback safe, le prochain Save réécrit tout.
		return domain.SubscriptionStorage{}, nil
	}
	return st, nil
}

func (r *SnapshotRepository) Save(ctx context.Context, st domain.SubscriptionStorage) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO kvstore(key, value_json, updated_at)
		VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at
	`, storageKey, b, time.Now().UTC().Format(time.RFC3339))
	return err
}
