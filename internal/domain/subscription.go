package domain

import "time"

// MaxCaptionUpdates borne l'historique par souscription (les plus anciens sautent).
const MaxCaptionUpdates = 10

// UpdateRetention est la durée de rétention de l'historique appliquée par Cleanup.
const UpdateRetention = 30 * 24 * time.Hour

// CaptionUpdate enregistre un changement de compteur de sous-titres détecté.
type CaptionUpdate struct {
	Date          time.Time `json:"date"`
	PreviousCount int       `json:"previousCount"`
	CurrentCount  int       `json:"currentCount"`
	IsNewUpdate   bool      `json:"isNewUpdate"`
}

// Subscription étend un AnimeItem avec l'état de suivi.
type Subscription struct {
	AnimeItem

	SubscribedAt   time.Time       `json:"subscribedAt"`
	LastChecked    time.Time       `json:"lastChecked"`
	LastUpdated    time.Time       `json:"lastUpdated"`
	CaptionUpdates []CaptionUpdate `json:"captionUpdates"`
	IsNewEpisode   bool            `json:"isNewEpisode"`
}

// Reconcile applique un snapshot frais à la souscription.
// Retourne true si un CaptionUpdate a été ajouté (compteur différent).
// Idempotent quand le compteur n'a pas bougé: seul lastChecked change.
func (s *Subscription) Reconcile(fresh AnimeItem, now time.Time) bool {
	changed := s.CaptionCount != fresh.CaptionCount
	if changed {
		s.CaptionUpdates = append(s.CaptionUpdates, CaptionUpdate{
			Date:          now,
			PreviousCount: s.CaptionCount,
			CurrentCount:  fresh.CaptionCount,
			IsNewUpdate:   true,
		})
		if n := len(s.CaptionUpdates); n > MaxCaptionUpdates {
			s.CaptionUpdates = s.CaptionUpdates[n-MaxCaptionUpdates:]
		}
		s.LastUpdated = now
		s.IsNewEpisode = true
	}

	// Le snapshot écrase tous les champs de l'item, l'état de suivi est préservé.
	s.AnimeItem = fresh
	s.LastChecked = now
	return changed
}

// MarkRead efface le drapeau non-lu de la souscription et de tout son historique.
func (s *Subscription) MarkRead() {
	s.IsNewEpisode = false
	for i := range s.CaptionUpdates {
		s.CaptionUpdates[i].IsNewUpdate = false
	}
}

// PruneUpdates supprime les entrées d'historique strictement plus vieilles que
// la rétention (une entrée âgée d'exactement 30 jours est supprimée).
func (s *Subscription) PruneUpdates(now time.Time) int {
	cutoff := now.Add(-UpdateRetention)
	kept := s.CaptionUpdates[:0]
	for _, u := range s.CaptionUpdates {
		if u.Date.After(cutoff) {
			kept = append(kept, u)
		}
	}
	removed := len(s.CaptionUpdates) - len(kept)
	s.CaptionUpdates = kept
	return removed
}

// SubscriptionStorage est l'objet racine persisté: l'ensemble des souscriptions
// (uniques par animeNo) plus l'horodatage du dernier check global.
type SubscriptionStorage struct {
	Subscriptions   []Subscription `json:"subscriptions"`
	LastGlobalCheck time.Time      `json:"lastGlobalCheck"`
}

// Find renvoie l'index de la souscription pour animeNo, ou -1.
func (st *SubscriptionStorage) Find(animeNo int) int {
	for i := range st.Subscriptions {
		if st.Subscriptions[i].AnimeNo == animeNo {
			return i
		}
	}
	return -1
}

// SubscriptionStats agrège les compteurs d'affichage.
type SubscriptionStats struct {
	TotalSubscriptions  int `json:"totalSubscriptions"`
	HasNewUpdates       int `json:"hasNewUpdates"`
	OnAirCount          int `json:"onAirCount"`
	TotalCaptionUpdates int `json:"totalCaptionUpdates"`
}

func (st *SubscriptionStorage) Stats() SubscriptionStats {
	stats := SubscriptionStats{TotalSubscriptions: len(st.Subscriptions)}
	for i := range st.Subscriptions {
		sub := &st.Subscriptions[i]
		if sub.IsNewEpisode {
			stats.HasNewUpdates++
		}
		if sub.Status == StatusOnAir {
			stats.OnAirCount++
		}
		stats.TotalCaptionUpdates += len(sub.CaptionUpdates)
	}
	return stats
}
