package ports

import (
	"context"

	"github.com/yldst-dev/anitime/internal/domain"
)

// SnapshotStore persiste l'objet racine SubscriptionStorage sous une clé
// unique. Toute mutation passe par un read-modify-write complet du snapshot.
type SnapshotStore interface {
	Load(ctx context.Context) (domain.SubscriptionStorage, error)
	Save(ctx context.Context, storage domain.SubscriptionStorage) error
}

type SettingsRepository interface {
	Get(ctx context.Context) (domain.Settings, error)
	Put(ctx context.Context, settings domain.Settings) (domain.Settings, error)
}
