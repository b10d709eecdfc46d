package app

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/yldst-dev/anitime/internal/domain"
	"github.com/yldst-dev/anitime/internal/ports"
)

// Topics publiés par le service; les observateurs relisent le store à la réception.
const (
	TopicSubscriptionAdded    = "subscription.added"
	TopicSubscriptionRemoved  = "subscription.removed"
	TopicSubscriptionUpdated  = "subscription.updated"
	TopicSubscriptionRead     = "subscription.read"
	TopicSubscriptionsRead    = "subscriptions.read-all"
	TopicSubscriptionsCleaned = "subscriptions.cleaned"
	TopicSubscriptionsImport  = "subscriptions.imported"
	TopicSubscriptionsPolled  = "subscriptions.updated"
)

// SubscriptionService possède exclusivement le snapshot persisté. Chaque
// mutation fait un read-modify-write complet sous mutex, persiste de façon
// synchrone, puis publie sur le bus.
type SubscriptionService struct {
	mu    sync.Mutex
	store ports.SnapshotStore
	bus   ports.EventBus
}

func NewSubscriptionService(store ports.SnapshotStore, bus ports.EventBus) *SubscriptionService {
	return &SubscriptionService{store: store, bus: bus}
}

func (s *SubscriptionService) List(ctx context.Context) ([]domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return st.Subscriptions, nil
}

func (s *SubscriptionService) Get(ctx context.Context, animeNo int) (domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.store.Load(ctx)
	if err != nil {
		return domain.Subscription{}, err
	}
	i := st.Find(animeNo)
	if i < 0 {
		return domain.Subscription{}, ErrNotFound
	}
	return st.Subscriptions[i], nil
}

func (s *SubscriptionService) IsSubscribed(ctx context.Context, animeNo int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.store.Load(ctx)
	if err != nil {
		return false, err
	}
	return st.Find(animeNo) >= 0, nil
}

// Subscribe crée une souscription pour l'item. No-op si l'animeNo est déjà
// suivi (la souscription existante est renvoyée, created=false).
func (s *SubscriptionService) Subscribe(ctx context.Context, item domain.AnimeItem) (domain.Subscription, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.store.Load(ctx)
	if err != nil {
		return domain.Subscription{}, false, err
	}
	if i := st.Find(item.AnimeNo); i >= 0 {
		return st.Subscriptions[i], false, nil
	}

	now := time.Now().UTC()
	sub := domain.Subscription{
		AnimeItem:      item,
		SubscribedAt:   now,
		LastChecked:    now,
		LastUpdated:    now,
		CaptionUpdates: []domain.CaptionUpdate{},
		IsNewEpisode:   false,
	}
	st.Subscriptions = append(st.Subscriptions, sub)
	if err := s.save(ctx, &st, now); err != nil {
		return domain.Subscription{}, false, err
	}
	s.publish(TopicSubscriptionAdded, sub)
	return sub, true, nil
}

// Unsubscribe supprime la souscription si présente; no-op sinon.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, animeNo int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.store.Load(ctx)
	if err != nil {
		return false, err
	}
	i := st.Find(animeNo)
	if i < 0 {
		return false, nil
	}
	st.Subscriptions = append(st.Subscriptions[:i], st.Subscriptions[i+1:]...)
	if err := s.save(ctx, &st, time.Now().UTC()); err != nil {
		return false, err
	}
	s.publishRaw(TopicSubscriptionRemoved, map[string]any{"animeNo": animeNo})
	return true, nil
}

// ReconcileOne applique un snapshot frais à une souscription (diff du
// compteur de sous-titres, cf. domain.Subscription.Reconcile). Exposé seul
// pour les observateurs mono-carte; le poller l'appelle en lot.
func (s *SubscriptionService) ReconcileOne(ctx context.Context, animeNo int, fresh domain.AnimeItem) (domain.Subscription, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconcileLocked(ctx, animeNo, fresh)
}

func (s *SubscriptionService) reconcileLocked(ctx context.Context, animeNo int, fresh domain.AnimeItem) (domain.Subscription, bool, error) {
	st, err := s.store.Load(ctx)
	if err != nil {
		return domain.Subscription{}, false, err
	}
	i := st.Find(animeNo)
	if i < 0 {
		return domain.Subscription{}, false, ErrNotFound
	}

	now := time.Now().UTC()
	changed := st.Subscriptions[i].Reconcile(fresh, now)
	if err := s.save(ctx, &st, now); err != nil {
		return domain.Subscription{}, false, err
	}
	sub := st.Subscriptions[i]
	if changed {
		s.publish(TopicSubscriptionUpdated, sub)
	}
	return sub, changed, nil
}

// ReconcileBatch confronte l'ensemble des souscriptions aux items fraîchement
// récupérés. Un seul read-modify-write pour tout le lot; renvoie le nombre de
// souscriptions ayant reçu un CaptionUpdate.
func (s *SubscriptionService) ReconcileBatch(ctx context.Context, fresh []domain.AnimeItem) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	if len(st.Subscriptions) == 0 {
		return 0, nil
	}

	byNo := make(map[int]domain.AnimeItem, len(fresh))
	for _, item := range fresh {
		byNo[item.AnimeNo] = item
	}

	now := time.Now().UTC()
	changedCount := 0
	for i := range st.Subscriptions {
		sub := &st.Subscriptions[i]
		item, ok := byNo[sub.AnimeNo]
		if !ok {
			continue
		}
		// Même garde que le client d'origine: on ne réconcilie que si le
		// compteur ou le statut a bougé.
		if item.CaptionCount == sub.CaptionCount && item.Status == sub.Status {
			continue
		}
		if sub.Reconcile(item, now) {
			changedCount++
		}
	}

	if err := s.save(ctx, &st, now); err != nil {
		return 0, err
	}
	if changedCount > 0 {
		s.publishRaw(TopicSubscriptionsPolled, map[string]any{"changed": changedCount})
	}
	return changedCount, nil
}

// MarkRead efface le drapeau non-lu de la souscription et de son historique.
func (s *SubscriptionService) MarkRead(ctx context.Context, animeNo int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	i := st.Find(animeNo)
	if i < 0 {
		return ErrNotFound
	}
	st.Subscriptions[i].MarkRead()
	if err := s.save(ctx, &st, time.Now().UTC()); err != nil {
		return err
	}
	s.publish(TopicSubscriptionRead, st.Subscriptions[i])
	return nil
}

func (s *SubscriptionService) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	for i := range st.Subscriptions {
		st.Subscriptions[i].MarkRead()
	}
	if err := s.save(ctx, &st, time.Now().UTC()); err != nil {
		return err
	}
	s.publishRaw(TopicSubscriptionsRead, map[string]any{"count": len(st.Subscriptions)})
	return nil
}

// Cleanup purge les entrées d'historique plus vieilles que 30 jours.
// Ne supprime jamais les souscriptions elles-mêmes.
func (s *SubscriptionService) Cleanup(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	removed := 0
	for i := range st.Subscriptions {
		removed += st.Subscriptions[i].PruneUpdates(now)
	}
	if err := s.save(ctx, &st, now); err != nil {
		return 0, err
	}
	if removed > 0 {
		s.publishRaw(TopicSubscriptionsCleaned, map[string]any{"removed": removed})
	}
	return removed, nil
}

func (s *SubscriptionService) Stats(ctx context.Context) (domain.SubscriptionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.store.Load(ctx)
	if err != nil {
		return domain.SubscriptionStats{}, err
	}
	return st.Stats(), nil
}

// Export sérialise la liste des souscriptions (JSON indenté, format fichier).
func (s *SubscriptionService) Export(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	subs := st.Subscriptions
	if subs == nil {
		subs = []domain.Subscription{}
	}
	return json.MarshalIndent(subs, "", "  ")
}

// Import fusionne une liste sérialisée dans le store: un record inconnu est
// ajouté, un record existant n'est remplacé que si son lastUpdated est
// strictement plus récent. Payload invalide ou non-liste → import_invalid,
// store intact.
func (s *SubscriptionService) Import(ctx context.Context, data []byte) (int, error) {
	// Le payload doit être un tableau JSON. Unmarshal seul laisserait passer
	// "null" (slice nil, pas d'erreur), donc on vérifie le premier token.
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('[') {
		return 0, &CodedError{Code: CodeImportInvalid, Message: "payload is not a subscription list", Err: err}
	}

	var incoming []domain.Subscription
	if err := json.Unmarshal(data, &incoming); err != nil {
		return 0, &CodedError{Code: CodeImportInvalid, Message: "payload is not a subscription list", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}

	merged := 0
	for _, in := range incoming {
		i := st.Find(in.AnimeNo)
		if i < 0 {
			st.Subscriptions = append(st.Subscriptions, in)
			merged++
			continue
		}
		if in.LastUpdated.After(st.Subscriptions[i].LastUpdated) {
			st.Subscriptions[i] = in
			merged++
		}
	}

	if err := s.save(ctx, &st, time.Now().UTC()); err != nil {
		return 0, err
	}
	s.publishRaw(TopicSubscriptionsImport, map[string]any{"merged": merged, "received": len(incoming)})
	return merged, nil
}

// save persiste le snapshot complet et met à jour lastGlobalCheck, comme le
// faisait chaque écriture localStorage du client d'origine.
func (s *SubscriptionService) save(ctx context.Context, st *domain.SubscriptionStorage, now time.Time) error {
	st.LastGlobalCheck = now
	return s.store.Save(ctx, *st)
}

func (s *SubscriptionService) publish(topic string, sub domain.Subscription) {
	if s.bus == nil {
		return
	}
	b, err := json.Marshal(sub)
	if err != nil {
		return
	}
	s.bus.Publish(topic, b)
}

func (s *SubscriptionService) publishRaw(topic string, v any) {
	if s.bus == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.bus.Publish(topic, b)
}
