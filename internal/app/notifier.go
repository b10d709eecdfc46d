package app

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yldst-dev/anitime/internal/ports"
)

// UpdateNotifier écoute le bus et journalise les transitions de compteur
// non-lu après réconciliation. C'est le rendu serveur du gestionnaire de
// notifications du client: best-effort, aucune garantie de livraison.
type UpdateNotifier struct {
	logger zerolog.Logger
	bus    ports.EventBus
	subs   *SubscriptionService

	lastUnread int
}

func NewUpdateNotifier(logger zerolog.Logger, bus ports.EventBus, subs *SubscriptionService) *UpdateNotifier {
	return &UpdateNotifier{logger: logger, bus: bus, subs: subs}
}

func (n *UpdateNotifier) Run(ctx context.Context) {
	if n == nil || n.bus == nil || n.subs == nil {
		return
	}
	ch, cancel := n.bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			n.logger.Info().Msg("update notifier stopped")
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			n.handleEvent(ctx, evt)
		}
	}
}

func (n *UpdateNotifier) handleEvent(ctx context.Context, evt ports.Event) {
	switch evt.Topic {
	case TopicSubscriptionUpdated, TopicSubscriptionsPolled:
	default:
		return
	}

	stats, err := n.subs.Stats(ctx)
	if err != nil {
		n.logger.Warn().Err(err).Msg("notifier: stats read failed")
		return
	}

	// La première observation n'est jamais notifiée: un compteur non-lu
	// hérité d'une session précédente ne doit pas déclencher au démarrage.
	if stats.HasNewUpdates > n.lastUnread && n.lastUnread > 0 {
		n.logger.Info().
			Int("newUpdates", stats.HasNewUpdates-n.lastUnread).
			Int("unread", stats.HasNewUpdates).
			Int("subscriptions", stats.TotalSubscriptions).
			Msg("new caption updates available")
	}
	n.lastUnread = stats.HasNewUpdates
}
