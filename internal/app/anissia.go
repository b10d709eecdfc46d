package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yldst-dev/anitime/internal/domain"
)

// DefaultAPIBaseURL est l'API publique Anissia.
const DefaultAPIBaseURL = "https://api.anissia.net"

// scheduleEnvelope est l'enveloppe de réponse réelle de l'API.
type scheduleEnvelope struct {
	Code string             `json:"code"`
	Data []domain.AnimeItem `json:"data"`
}

// AnissiaClient récupère le planning hebdomadaire. Pur requête/réponse,
// aucun retry interne: l'appelant décide.
type AnissiaClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewAnissiaClient(baseURL string) *AnissiaClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	return &AnissiaClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 20 * time.Second},
	}
}

// FetchSchedule renvoie les items diffusés pour un bucket donné (0..8).
// Réponse transport non-2xx → network_error avec le statut; enveloppe
// inattendue (code != "ok" ou data absent) → format_error.
func (c *AnissiaClient) FetchSchedule(ctx context.Context, week domain.Weekday) ([]domain.AnimeItem, error) {
	if !week.Valid() {
		return nil, &CodedError{Code: CodeFormatError, Message: fmt.Sprintf("invalid weekday: %d", int(week))}
	}

	url := fmt.Sprintf("%s/anime/schedule/%d", c.BaseURL, int(week))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "anitime-server")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &CodedError{Code: CodeNetworkError, Message: "schedule request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &CodedError{
			Code:    CodeNetworkError,
			Message: fmt.Sprintf("schedule http error: %s", resp.Status),
			Status:  resp.StatusCode,
		}
	}

	var envelope scheduleEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &CodedError{Code: CodeFormatError, Message: "invalid schedule payload", Err: err}
	}
	if envelope.Code != "ok" || envelope.Data == nil {
		return nil, &CodedError{Code: CodeFormatError, Message: fmt.Sprintf("unexpected api code: %q", envelope.Code)}
	}
	return envelope.Data, nil
}

// WeekdayCache mémorise animeNo → bucket pour la durée de vie du process.
// Pas d'éviction: seul Clear invalide, explicitement.
type WeekdayCache struct {
	mu sync.RWMutex
	m  map[int]domain.Weekday
}

func NewWeekdayCache() *WeekdayCache {
	return &WeekdayCache{m: make(map[int]domain.Weekday)}
}

func (c *WeekdayCache) Get(animeNo int) (domain.Weekday, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	w, ok := c.m[animeNo]
	return w, ok
}

func (c *WeekdayCache) Put(animeNo int, week domain.Weekday) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[animeNo] = week
}

func (c *WeekdayCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[int]domain.Weekday)
}

// WeekdayResolver retrouve le bucket d'un anime en interrogeant les neuf
// buckets séquentiellement jusqu'au premier qui le contient.
type WeekdayResolver struct {
	client *AnissiaClient
	cache  *WeekdayCache
}

func NewWeekdayResolver(client *AnissiaClient, cache *WeekdayCache) *WeekdayResolver {
	if cache == nil {
		cache = NewWeekdayCache()
	}
	return &WeekdayResolver{client: client, cache: cache}
}

// Resolve renvoie ErrNotFound après épuisement des neuf buckets.
// Les erreurs de fetch d'un bucket sont ignorées (on tente le suivant).
func (r *WeekdayResolver) Resolve(ctx context.Context, animeNo int) (domain.Weekday, error) {
	if w, ok := r.cache.Get(animeNo); ok {
		return w, nil
	}

	for _, week := range domain.AllWeekdays {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		items, err := r.client.FetchSchedule(ctx, week)
		if err != nil {
			continue
		}
		for _, item := range items {
			if item.AnimeNo == animeNo {
				r.cache.Put(animeNo, week)
				return week, nil
			}
		}
	}
	return 0, ErrNotFound
}
