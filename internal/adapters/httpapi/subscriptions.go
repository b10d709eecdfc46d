package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yldst-dev/anitime/internal/app"
	"github.com/yldst-dev/anitime/internal/domain"
	"github.com/yldst-dev/anitime/internal/httpjson"
)

// maxImportBytes borne la taille d'un fichier d'import.
const maxImportBytes = 4 << 20

type SubscriptionsHandler struct {
	subs   *app.SubscriptionService
	poller *app.UpdatePoller
}

func NewSubscriptionsHandler(subs *app.SubscriptionService, poller *app.UpdatePoller) *SubscriptionsHandler {
	return &SubscriptionsHandler{subs: subs, poller: poller}
}

func (h *SubscriptionsHandler) Routes(r chi.Router) {
	r.Route("/subscriptions", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.subscribe)
		r.Get("/stats", h.stats)
		r.Get("/export", h.export)
		r.Post("/import", h.importAll)
		r.Post("/read-all", h.markAllRead)
		r.Post("/cleanup", h.cleanup)
		r.Post("/poll", h.poll)
		r.Get("/{animeNo}", h.get)
		r.Delete("/{animeNo}", h.unsubscribe)
		r.Post("/{animeNo}/reconcile", h.reconcile)
		r.Post("/{animeNo}/read", h.markRead)
	})
}

func animeNoParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "animeNo"))
}

func (h *SubscriptionsHandler) list(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subs.List(r.Context())
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if subs == nil {
		subs = []domain.Subscription{}
	}
	httpjson.Write(w, http.StatusOK, subs)
}

func (h *SubscriptionsHandler) subscribe(w http.ResponseWriter, r *http.Request) {
	var item domain.AnimeItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if item.AnimeNo <= 0 {
		httpjson.WriteError(w, http.StatusBadRequest, "missing animeNo")
		return
	}

	sub, created, err := h.subs.Subscribe(r.Context(), item)
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httpjson.Write(w, status, sub)
}

func (h *SubscriptionsHandler) get(w http.ResponseWriter, r *http.Request) {
	animeNo, err := animeNoParam(r)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid animeNo")
		return
	}
	sub, err := h.subs.Get(r.Context(), animeNo)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			httpjson.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, sub)
}

func (h *SubscriptionsHandler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	animeNo, err := animeNoParam(r)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid animeNo")
		return
	}
	// Suppression idempotente: un animeNo inconnu répond 204 aussi.
	if _, err := h.subs.Unsubscribe(r.Context(), animeNo); err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SubscriptionsHandler) reconcile(w http.ResponseWriter, r *http.Request) {
	animeNo, err := animeNoParam(r)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid animeNo")
		return
	}
	var fresh domain.AnimeItem
	if err := json.NewDecoder(r.Body).Decode(&fresh); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}

	sub, changed, err := h.subs.ReconcileOne(r.Context(), animeNo, fresh)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			httpjson.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{
		"subscription": sub,
		"changed":      changed,
	})
}

func (h *SubscriptionsHandler) markRead(w http.ResponseWriter, r *http.Request) {
	animeNo, err := animeNoParam(r)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid animeNo")
		return
	}
	if err := h.subs.MarkRead(r.Context(), animeNo); err != nil {
		if errors.Is(err, app.ErrNotFound) {
			httpjson.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SubscriptionsHandler) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.subs.MarkAllRead(r.Context()); err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SubscriptionsHandler) cleanup(w http.ResponseWriter, r *http.Request) {
	removed, err := h.subs.Cleanup(r.Context())
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]int{"removed": removed})
}

func (h *SubscriptionsHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.subs.Stats(r.Context())
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, stats)
}

// poll déclenche un cycle hors cadence (équivalent focus côté client).
func (h *SubscriptionsHandler) poll(w http.ResponseWriter, r *http.Request) {
	if h.poller == nil {
		httpjson.WriteError(w, http.StatusServiceUnavailable, "poller not running")
		return
	}
	h.poller.Kick()
	w.WriteHeader(http.StatusAccepted)
}

func (h *SubscriptionsHandler) export(w http.ResponseWriter, r *http.Request) {
	b, err := h.subs.Export(r.Context())
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	filename := fmt.Sprintf("anime-subscriptions-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *SubscriptionsHandler) importAll(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	merged, err := h.subs.Import(r.Context(), data)
	if err != nil {
		if app.ErrorCode(err) == app.CodeImportInvalid {
			httpjson.Write(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "invalid subscription list",
			})
			return
		}
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{
		"success": true,
		"merged":  merged,
	})
}
