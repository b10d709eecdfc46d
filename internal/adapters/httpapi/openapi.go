package httpapi

import (
	"net/http"

	"github.com/yldst-dev/anitime/internal/httpjson"
)

// handleOpenAPI renvoie une spec OpenAPI minimale pour cadrer l'API.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	jsonOK := func(schemaRef string) map[string]any {
		return map[string]any{
			"description": "OK",
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": schemaRef},
				},
			},
		}
	}

	jsonErr := map[string]any{
		"description": "Error",
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/Error"},
			},
		},
	}

	spec := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "anitime API",
			"version": "v1",
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"Error": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"error": map[string]any{"type": "string"},
					},
					"required": []any{"error"},
				},
				"AnimeItem": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"animeNo":         map[string]any{"type": "integer"},
						"status":          map[string]any{"type": "string", "enum": []any{"ON", "OFF"}},
						"time":            map[string]any{"type": "string"},
						"subject":         map[string]any{"type": "string"},
						"originalSubject": map[string]any{"type": "string"},
						"genres":          map[string]any{"type": "string"},
						"startDate":       map[string]any{"type": "string"},
						"endDate":         map[string]any{"type": "string"},
						"website":         map[string]any{"type": "string"},
						"captionCount":    map[string]any{"type": "integer"},
					},
					"required": []any{"animeNo", "status", "subject", "captionCount"},
				},
				"CaptionUpdate": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"date":          map[string]any{"type": "string", "format": "date-time"},
						"previousCount": map[string]any{"type": "integer"},
						"currentCount":  map[string]any{"type": "integer"},
						"isNewUpdate":   map[string]any{"type": "boolean"},
					},
				},
				"Subscription": map[string]any{
					"allOf": []any{
						map[string]any{"$ref": "#/components/schemas/AnimeItem"},
						map[string]any{
							"type": "object",
							"properties": map[string]any{
								"subscribedAt": map[string]any{"type": "string", "format": "date-time"},
								"lastChecked":  map[string]any{"type": "string", "format": "date-time"},
								"lastUpdated":  map[string]any{"type": "string", "format": "date-time"},
								"captionUpdates": map[string]any{
									"type":  "array",
									"items": map[string]any{"$ref": "#/components/schemas/CaptionUpdate"},
								},
								"isNewEpisode": map[string]any{"type": "boolean"},
							},
						},
					},
				},
				"SubscriptionStats": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"totalSubscriptions":  map[string]any{"type": "integer"},
						"hasNewUpdates":       map[string]any{"type": "integer"},
						"onAirCount":          map[string]any{"type": "integer"},
						"totalCaptionUpdates": map[string]any{"type": "integer"},
					},
				},
				"Settings": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"generalRefreshSeconds":      map[string]any{"type": "integer", "minimum": 1},
						"subscriptionRefreshSeconds": map[string]any{"type": "integer", "minimum": 1},
						"maxConcurrentFetches":       map[string]any{"type": "integer", "minimum": 1},
					},
					"additionalProperties": false,
				},
			},
		},
		"paths": map[string]any{
			"/api/v1/health": map[string]any{
				"get": map[string]any{
					"summary":   "Health check",
					"responses": map[string]any{"200": map[string]any{"description": "OK"}},
				},
			},
			"/api/v1/schedule/{week}": map[string]any{
				"get": map[string]any{
					"summary": "Planning d'un bucket (0..6 jours, 7 autres, 8 nouveautés)",
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/AnimeItem"),
						"502": jsonErr,
					},
				},
			},
			"/api/v1/schedule/{week}/search": map[string]any{
				"get": map[string]any{
					"summary": "Recherche dans le planning d'un bucket",
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/AnimeItem"),
						"502": jsonErr,
					},
				},
			},
			"/api/v1/anime/{animeNo}/weekday": map[string]any{
				"get": map[string]any{
					"summary": "Bucket de diffusion d'un anime (scan séquentiel, mis en cache)",
					"responses": map[string]any{
						"200": map[string]any{"description": "OK"},
						"404": jsonErr,
					},
				},
			},
			"/api/v1/subscriptions": map[string]any{
				"get": map[string]any{
					"summary":   "Liste des souscriptions",
					"responses": map[string]any{"200": jsonOK("#/components/schemas/Subscription")},
				},
				"post": map[string]any{
					"summary": "Souscrire à un item du planning (idempotent)",
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/Subscription"),
						"201": jsonOK("#/components/schemas/Subscription"),
					},
				},
			},
			"/api/v1/subscriptions/stats": map[string]any{
				"get": map[string]any{
					"summary":   "Compteurs agrégés",
					"responses": map[string]any{"200": jsonOK("#/components/schemas/SubscriptionStats")},
				},
			},
			"/api/v1/subscriptions/export": map[string]any{
				"get": map[string]any{
					"summary":   "Export JSON téléchargeable de la liste",
					"responses": map[string]any{"200": map[string]any{"description": "OK"}},
				},
			},
			"/api/v1/subscriptions/import": map[string]any{
				"post": map[string]any{
					"summary": "Fusion d'une liste exportée (lastUpdated plus récent gagne)",
					"responses": map[string]any{
						"200": map[string]any{"description": "OK"},
						"400": jsonErr,
					},
				},
			},
			"/api/v1/settings": map[string]any{
				"get": map[string]any{
					"summary":   "Réglages runtime",
					"responses": map[string]any{"200": jsonOK("#/components/schemas/Settings")},
				},
				"put": map[string]any{
					"summary":   "Met à jour les réglages (appliqués à chaud)",
					"responses": map[string]any{"200": jsonOK("#/components/schemas/Settings")},
				},
			},
		},
	}

	httpjson.Write(w, http.StatusOK, spec)
}
