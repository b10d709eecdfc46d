package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/yldst-dev/anitime/internal/app"
	"github.com/yldst-dev/anitime/internal/domain"
	"github.com/yldst-dev/anitime/internal/ports"
)

type Server struct {
	logger   zerolog.Logger
	client   *app.AnissiaClient
	resolver *app.WeekdayResolver
	subs     *app.SubscriptionService
	settings *app.SettingsService
	poller   *app.UpdatePoller
	bus      ports.EventBus
	// onSettingsUpdated est optionnel (ex: recadencer le poller à chaud).
	onSettingsUpdated func(domain.Settings)
}

func NewServer(
	logger zerolog.Logger,
	client *app.AnissiaClient,
	resolver *app.WeekdayResolver,
	subs *app.SubscriptionService,
	settings *app.SettingsService,
	poller *app.UpdatePoller,
	bus ports.EventBus,
	onSettingsUpdated func(domain.Settings),
) *Server {
	return &Server{
		logger:            logger,
		client:            client,
		resolver:          resolver,
		subs:              subs,
		settings:          settings,
		poller:            poller,
		bus:               bus,
		onSettingsUpdated: onSettingsUpdated,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRequestTimeout))
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_ip"))
	r.Use(hlog.UserAgentHandler("user_agent"))
	r.Use(hlog.AccessHandler(accessLogFn))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
		r.Get("/openapi.json", s.handleOpenAPI)
		r.Get("/events", s.handleEvents)

		if s.client != nil {
			NewScheduleHandler(s.client, s.resolver).Routes(r)
		}
		if s.subs != nil {
			NewSubscriptionsHandler(s.subs, s.poller).Routes(r)
		}
		if s.settings != nil {
			NewSettingsHandler(s.settings, s.onSettingsUpdated).Routes(r)
		}
	})

	return r
}
