package domain

import (
	"testing"
	"time"
)

func makeSub(animeNo, captionCount int) Subscription {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return Subscription{
		AnimeItem: AnimeItem{
			AnimeNo:      animeNo,
			Status:       StatusOnAir,
			Subject:      "test",
			CaptionCount: captionCount,
		},
		SubscribedAt:   now,
		LastChecked:    now,
		LastUpdated:    now,
		CaptionUpdates: []CaptionUpdate{},
	}
}

func TestReconcile_CaptionCountChanged(t *testing.T) {
	sub := makeSub(42, 5)
	now := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	fresh := sub.AnimeItem
	fresh.CaptionCount = 8
	fresh.Subject = "renamed"

	if !sub.Reconcile(fresh, now) {
		t.Fatalf("expected change to be detected")
	}
	if sub.CaptionCount != 8 {
		t.Fatalf("captionCount: want 8, got %d", sub.CaptionCount)
	}
	if sub.Subject != "renamed" {
		t.Fatalf("snapshot fields should be overwritten")
	}
	if len(sub.CaptionUpdates) != 1 {
		t.Fatalf("want exactly 1 update, got %d", len(sub.CaptionUpdates))
	}
	u := sub.CaptionUpdates[0]
	if u.PreviousCount != 5 || u.CurrentCount != 8 || !u.IsNewUpdate {
		t.Fatalf("unexpected update record: %+v", u)
	}
	if !sub.IsNewEpisode {
		t.Fatalf("unread flag should be set")
	}
	if !sub.LastUpdated.Equal(now) || !sub.LastChecked.Equal(now) {
		t.Fatalf("timestamps not updated")
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	sub := makeSub(42, 3)
	subscribedAt := sub.SubscribedAt
	now := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	fresh := sub.AnimeItem
	if sub.Reconcile(fresh, now) {
		t.Fatalf("equal counts should not be a change")
	}
	if sub.Reconcile(fresh, now.Add(time.Minute)) {
		t.Fatalf("second call should not be a change either")
	}
	if len(sub.CaptionUpdates) != 0 {
		t.Fatalf("no update expected, got %d", len(sub.CaptionUpdates))
	}
	if sub.IsNewEpisode {
		t.Fatalf("unread flag should stay false")
	}
	if !sub.SubscribedAt.Equal(subscribedAt) {
		t.Fatalf("subscribedAt must be preserved")
	}
	if !sub.LastChecked.Equal(now.Add(time.Minute)) {
		t.Fatalf("lastChecked should follow the latest call")
	}
}

func TestReconcile_HistoryCap(t *testing.T) {
	sub := makeSub(42, 0)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 11; i++ {
		fresh := sub.AnimeItem
		fresh.CaptionCount = i
		sub.Reconcile(fresh, base.Add(time.Duration(i)*time.Hour))
	}

	if len(sub.CaptionUpdates) != MaxCaptionUpdates {
		t.Fatalf("want %d entries, got %d", MaxCaptionUpdates, len(sub.CaptionUpdates))
	}
	// Le plus ancien (0→1) a sauté, l'ordre relatif est préservé.
	if sub.CaptionUpdates[0].PreviousCount != 1 || sub.CaptionUpdates[0].CurrentCount != 2 {
		t.Fatalf("oldest entry should have been dropped: %+v", sub.CaptionUpdates[0])
	}
	last := sub.CaptionUpdates[len(sub.CaptionUpdates)-1]
	if last.PreviousCount != 10 || last.CurrentCount != 11 {
		t.Fatalf("most recent entry must be last: %+v", last)
	}
}

func TestMarkRead(t *testing.T) {
	sub := makeSub(42, 1)
	fresh := sub.AnimeItem
	fresh.CaptionCount = 2
	sub.Reconcile(fresh, time.Now().UTC())

	sub.MarkRead()
	if sub.IsNewEpisode {
		t.Fatalf("unread flag should be cleared")
	}
	for _, u := range sub.CaptionUpdates {
		if u.IsNewUpdate {
			t.Fatalf("history entries should be marked read, got %+v", u)
		}
	}
	if len(sub.CaptionUpdates) != 1 {
		t.Fatalf("markRead must not delete history")
	}
}

func TestPruneUpdates_Boundary(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	sub := makeSub(42, 0)
	sub.CaptionUpdates = []CaptionUpdate{
		{Date: now.Add(-31 * 24 * time.Hour)}, // trop vieux
		{Date: now.Add(-30 * 24 * time.Hour)}, // exactement à la limite: supprimé
		{Date: now.Add(-29 * 24 * time.Hour)}, // gardé
		{Date: now},                           // gardé
	}

	removed := sub.PruneUpdates(now)
	if removed != 2 {
		t.Fatalf("want 2 removed, got %d", removed)
	}
	if len(sub.CaptionUpdates) != 2 {
		t.Fatalf("want 2 kept, got %d", len(sub.CaptionUpdates))
	}
	if !sub.CaptionUpdates[0].Date.Equal(now.Add(-29 * 24 * time.Hour)) {
		t.Fatalf("wrong entry kept first: %+v", sub.CaptionUpdates[0])
	}
}

func TestStorageStats(t *testing.T) {
	st := SubscriptionStorage{}
	a := makeSub(1, 0)
	a.IsNewEpisode = true
	a.CaptionUpdates = []CaptionUpdate{{}, {}}
	b := makeSub(2, 0)
	b.Status = StatusOffAir
	st.Subscriptions = []Subscription{a, b}

	stats := st.Stats()
	if stats.TotalSubscriptions != 2 || stats.HasNewUpdates != 1 || stats.OnAirCount != 1 || stats.TotalCaptionUpdates != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
