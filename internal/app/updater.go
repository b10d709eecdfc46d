package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/yldst-dev/anitime/internal/domain"
)

// UpdatePoller orchestre la réconciliation périodique: fetch des sept jours
// calendaires, diff contre le store, persistance, signal de changement.
// C'est le seul endroit qui planifie des polls: deux tickers indépendants
// (refresh général ~60s, refresh souscriptions ~30s) plus Kick() convergent
// tous vers le même passage gardé par un drapeau in-progress.
type UpdatePoller struct {
	logger  zerolog.Logger
	client  *AnissiaClient
	subs    *SubscriptionService
	limiter *DynamicLimiter

	mu                   sync.Mutex
	generalInterval      time.Duration
	subscriptionInterval time.Duration

	polling atomic.Bool
	kick    chan struct{}
	reset   chan struct{}
}

func NewUpdatePoller(logger zerolog.Logger, client *AnissiaClient, subs *SubscriptionService, limiter *DynamicLimiter) *UpdatePoller {
	return &UpdatePoller{
		logger:               logger,
		client:               client,
		subs:                 subs,
		limiter:              limiter,
		generalInterval:      60 * time.Second,
		subscriptionInterval: 30 * time.Second,
		kick:                 make(chan struct{}, 1),
		reset:                make(chan struct{}, 1),
	}
}

// SetIntervals ajuste les deux cadences à chaud (hook settings).
func (p *UpdatePoller) SetIntervals(general, subscription time.Duration) {
	p.mu.Lock()
	if general > 0 {
		p.generalInterval = general
	}
	if subscription > 0 {
		p.subscriptionInterval = subscription
	}
	p.mu.Unlock()

	select {
	case p.reset <- struct{}{}:
	default:
	}
}

func (p *UpdatePoller) intervals() (time.Duration, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generalInterval, p.subscriptionInterval
}

// Kick déclenche un poll hors cadence (équivalent du regain de focus côté
// client). Ignoré si un poll est déjà en cours.
func (p *UpdatePoller) Kick() {
	if p.polling.Load() {
		p.logger.Debug().Msg("poll already in progress, kick ignored")
		return
	}
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func (p *UpdatePoller) Run(ctx context.Context) {
	// Poll de démarrage.
	p.tryPoll(ctx)

	for {
		general, subscription := p.intervals()
		generalTicker := time.NewTicker(general)
		subTicker := time.NewTicker(subscription)

		stopped := false
		rearm := false
		for !stopped && !rearm {
			select {
			case <-ctx.Done():
				stopped = true
			case <-generalTicker.C:
				p.tryPoll(ctx)
				p.drainStale(generalTicker, subTicker)
			case <-subTicker.C:
				p.tryPoll(ctx)
				p.drainStale(generalTicker, subTicker)
			case <-p.kick:
				p.tryPoll(ctx)
				p.drainStale(generalTicker, subTicker)
			case <-p.reset:
				rearm = true
			}
		}
		generalTicker.Stop()
		subTicker.Stop()

		if stopped {
			p.logger.Info().Msg("update poller stopped")
			return
		}
	}
}

// drainStale jette les triggers accumulés pendant le poll qui vient de se
// terminer: un tick ou un kick arrivé en cours de poll est ignoré, pas rejoué.
func (p *UpdatePoller) drainStale(general, sub *time.Ticker) {
	for {
		select {
		case <-general.C:
		case <-sub.C:
		case <-p.kick:
		default:
			return
		}
	}
}

// tryPoll applique la règle "pas de deux polls concurrents": un trigger qui
// arrive pendant un poll en cours est simplement ignoré.
func (p *UpdatePoller) tryPoll(ctx context.Context) {
	if !p.polling.CompareAndSwap(false, true) {
		p.logger.Debug().Msg("poll already in progress, trigger dropped")
		return
	}
	defer p.polling.Store(false)
	p.pollOnce(ctx)
}

func (p *UpdatePoller) pollOnce(ctx context.Context) {
	subs, err := p.subs.List(ctx)
	if err != nil {
		p.logger.Error().Err(err).Msg("poll: listing subscriptions failed")
		return
	}
	if len(subs) == 0 {
		return
	}

	start := time.Now()
	items := p.fetchCalendarWeeks(ctx)

	changed, err := p.subs.ReconcileBatch(ctx, items)
	if err != nil {
		p.logger.Error().Err(err).Msg("poll: reconciliation failed")
		return
	}
	if changed > 0 {
		p.logger.Info().
			Int("subscriptions", len(subs)).
			Int("changed", changed).
			Dur("duration", time.Since(start)).
			Msg("poll detected caption updates")
	}
}

// fetchCalendarWeeks récupère les sept jours en parallèle (borné par le
// limiter). Un échec sur un jour devient un résultat vide pour ce jour,
// jamais un échec global.
func (p *UpdatePoller) fetchCalendarWeeks(ctx context.Context) []domain.AnimeItem {
	results := make([][]domain.AnimeItem, len(domain.CalendarWeekdays))

	var wg sync.WaitGroup
	for i, week := range domain.CalendarWeekdays {
		wg.Add(1)
		go func(i int, week domain.Weekday) {
			defer wg.Done()
			if p.limiter != nil {
				if err := p.limiter.Acquire(ctx); err != nil {
					return
				}
				defer p.limiter.Release()
			}
			items, err := p.client.FetchSchedule(ctx, week)
			if err != nil {
				p.logger.Warn().Err(err).Stringer("week", week).Msg("weekday fetch failed, treated as empty")
				return
			}
			results[i] = items
		}(i, week)
	}
	wg.Wait()

	var all []domain.AnimeItem
	for _, items := range results {
		all = append(all, items...)
	}
	return all
}
