package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/yldst-dev/anitime/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSnapshotRepository_EmptyLoad(t *testing.T) {
	repo := NewSnapshotRepository(openTestDB(t).SQL)

	st, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(st.Subscriptions) != 0 || !st.LastGlobalCheck.IsZero() {
		t.Fatalf("fresh database should yield an empty snapshot: %+v", st)
	}
}

func TestSnapshotRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepository(openTestDB(t).SQL)

	now := time.Now().UTC().Truncate(time.Second)
	st := domain.SubscriptionStorage{
		Subscriptions: []domain.Subscription{
			{
				AnimeItem:    domain.AnimeItem{AnimeNo: 42, Status: domain.StatusOnAir, Subject: "x", CaptionCount: 3},
				SubscribedAt: now,
				CaptionUpdates: []domain.CaptionUpdate{
					{Date: now, PreviousCount: 2, CurrentCount: 3, IsNewUpdate: true},
				},
				IsNewEpisode: true,
			},
		},
		LastGlobalCheck: now,
	}
	if err := repo.Save(ctx, st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Subscriptions) != 1 {
		t.Fatalf("want 1 subscription, got %d", len(got.Subscriptions))
	}
	sub := got.Subscriptions[0]
	if sub.AnimeNo != 42 || sub.CaptionCount != 3 || !sub.IsNewEpisode {
		t.Fatalf("subscription mismatch: %+v", sub)
	}
	if len(sub.CaptionUpdates) != 1 || sub.CaptionUpdates[0].PreviousCount != 2 {
		t.Fatalf("caption updates mismatch: %+v", sub.CaptionUpdates)
	}
	if !got.LastGlobalCheck.Equal(now) {
		t.Fatalf("lastGlobalCheck mismatch: %v != %v", got.LastGlobalCheck, now)
	}
}

func TestSnapshotRepository_Overwrite(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepository(openTestDB(t).SQL)

	first := domain.SubscriptionStorage{Subscriptions: []domain.Subscription{
		{AnimeItem: domain.AnimeItem{AnimeNo: 1}},
		{AnimeItem: domain.AnimeItem{AnimeNo: 2}},
	}}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("Save(1): %v", err)
	}

	// Le Save suivant remplace le snapshot entier, pas de fusion.
	second := domain.SubscriptionStorage{Subscriptions: []domain.Subscription{
		{AnimeItem: domain.AnimeItem{AnimeNo: 3}},
	}}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("Save(2): %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Subscriptions) != 1 || got.Subscriptions[0].AnimeNo != 3 {
		t.Fatalf("snapshot not replaced: %+v", got.Subscriptions)
	}
}

func TestSnapshotRepository_CorruptPayload(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSnapshotRepository(db.SQL)

	_, err := db.SQL.ExecContext(ctx,
		`INSERT INTO kvstore(key, value_json, updated_at) VALUES(?, ?, ?)`,
		storageKey, []byte(`{{{not json`), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Blob corrompu → snapshot vide, pas d'erreur.
	st, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(st.Subscriptions) != 0 {
		t.Fatalf("corrupt payload should yield an empty snapshot: %+v", st)
	}
}

func TestSettingsRepository_DefaultAndRoundtrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(openTestDB(t).SQL)

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != domain.DefaultSettings() {
		t.Fatalf("fresh database should yield defaults, got %+v", got)
	}

	want := domain.Settings{GeneralRefreshSeconds: 120, SubscriptionRefreshSeconds: 45, MaxConcurrentFetches: 2}
	if _, err := repo.Put(ctx, want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got, err = repo.Get(ctx); err != nil || got != want {
		t.Fatalf("Get after Put: %+v err=%v", got, err)
	}
}
