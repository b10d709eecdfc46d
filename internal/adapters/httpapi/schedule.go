package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yldst-dev/anitime/internal/app"
	"github.com/yldst-dev/anitime/internal/domain"
	"github.com/yldst-dev/anitime/internal/httpjson"
)

// ScheduleHandler expose les vues planning (fetch utilisateur: les erreurs
// remontent avec le statut upstream, le client décide de réessayer).
type ScheduleHandler struct {
	client   *app.AnissiaClient
	resolver *app.WeekdayResolver
}

func NewScheduleHandler(client *app.AnissiaClient, resolver *app.WeekdayResolver) *ScheduleHandler {
	return &ScheduleHandler{client: client, resolver: resolver}
}

func (h *ScheduleHandler) Routes(r chi.Router) {
	r.Get("/schedule/{week}", h.week)
	r.Get("/schedule/{week}/search", h.search)
	if h.resolver != nil {
		r.Get("/anime/{animeNo}/weekday", h.weekday)
	}
}

func parseWeek(r *http.Request) (domain.Weekday, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		return 0, false
	}
	w := domain.Weekday(n)
	return w, w.Valid()
}

func writeFetchError(w http.ResponseWriter, err error) {
	var coded *app.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case app.CodeNetworkError:
			httpjson.Write(w, http.StatusBadGateway, map[string]any{
				"error":          coded.Message,
				"code":           coded.Code,
				"upstreamStatus": coded.Status,
				"retryable":      true,
			})
			return
		case app.CodeFormatError:
			httpjson.Write(w, http.StatusBadGateway, map[string]any{
				"error":     coded.Message,
				"code":      coded.Code,
				"retryable": true,
			})
			return
		}
	}
	httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
}

func (h *ScheduleHandler) week(w http.ResponseWriter, r *http.Request) {
	week, ok := parseWeek(r)
	if !ok {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid week")
		return
	}
	items, err := h.client.FetchSchedule(r.Context(), week)
	if err != nil {
		writeFetchError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, items)
}

type searchResponse struct {
	Items       []domain.AnimeItem `json:"items"`
	Stats       app.SearchStats    `json:"stats"`
	Suggestions []string           `json:"suggestions,omitempty"`
	Genres      []string           `json:"genres,omitempty"`
}

func (h *ScheduleHandler) search(w http.ResponseWriter, r *http.Request) {
	week, ok := parseWeek(r)
	if !ok {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid week")
		return
	}
	items, err := h.client.FetchSchedule(r.Context(), week)
	if err != nil {
		writeFetchError(w, err)
		return
	}

	q := r.URL.Query()
	filters := app.SearchFilters{
		Query:  q.Get("query"),
		Status: strings.ToUpper(strings.TrimSpace(q.Get("status"))),
	}
	if g := strings.TrimSpace(q.Get("genres")); g != "" {
		filters.Genres = strings.Split(g, ",")
	}

	filtered := app.SearchAnime(items, filters)
	resp := searchResponse{
		Items: filtered,
		Stats: app.GetSearchStats(items, filtered),
	}
	if filters.Query != "" {
		resp.Suggestions = app.GetSuggestions(items, filters.Query)
	}
	if q.Get("popularGenres") == "1" {
		resp.Genres = app.GetPopularGenres(items, 10)
	}
	httpjson.Write(w, http.StatusOK, resp)
}

func (h *ScheduleHandler) weekday(w http.ResponseWriter, r *http.Request) {
	animeNo, err := strconv.Atoi(chi.URLParam(r, "animeNo"))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid animeNo")
		return
	}
	week, err := h.resolver.Resolve(r.Context(), animeNo)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			httpjson.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		writeFetchError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{
		"animeNo": animeNo,
		"week":    int(week),
		"weekday": week.String(),
	})
}
