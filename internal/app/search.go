package app

import (
	"sort"
	"strings"

	"github.com/yldst-dev/anitime/internal/domain"
)

// SearchFilters combine texte libre, filtre de genres et filtre de statut.
// Status vaut "ON", "OFF" ou "" (tous).
type SearchFilters struct {
	Query  string
	Genres []string
	Status string
}

// SearchAnime filtre la liste en mémoire: la requête texte matche le titre,
// le titre original ou un genre (sous-chaîne, insensible à la casse).
func SearchAnime(items []domain.AnimeItem, filters SearchFilters) []domain.AnimeItem {
	query := strings.ToLower(strings.TrimSpace(filters.Query))

	out := make([]domain.AnimeItem, 0, len(items))
	for _, item := range items {
		if query != "" && !matchesQuery(item, query) {
			continue
		}
		if len(filters.Genres) > 0 && !matchesGenres(item, filters.Genres) {
			continue
		}
		if filters.Status != "" && item.Status != filters.Status {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesQuery(item domain.AnimeItem, query string) bool {
	if strings.Contains(strings.ToLower(item.Subject), query) {
		return true
	}
	if item.OriginalSubject != "" && strings.Contains(strings.ToLower(item.OriginalSubject), query) {
		return true
	}
	for _, g := range domain.SplitGenres(item.Genres) {
		if strings.Contains(strings.ToLower(g), query) {
			return true
		}
	}
	return false
}

func matchesGenres(item domain.AnimeItem, wanted []string) bool {
	have := domain.SplitGenres(item.Genres)
	for _, w := range wanted {
		for _, g := range have {
			if strings.EqualFold(strings.TrimSpace(w), g) {
				return true
			}
		}
	}
	return false
}

// HighlightPart est un fragment de texte, marqué si la requête y matche.
type HighlightPart struct {
	Text        string `json:"text"`
	Highlighted bool   `json:"highlighted"`
}

// HighlightText découpe text en fragments alternés pour l'affichage des
// résultats de recherche.
func HighlightText(text, query string) []HighlightPart {
	query = strings.TrimSpace(query)
	if query == "" {
		return []HighlightPart{{Text: text}}
	}

	lower := strings.ToLower(text)
	needle := strings.ToLower(query)
	parts := []HighlightPart{}

	cur := 0
	for {
		idx := strings.Index(lower[cur:], needle)
		if idx < 0 {
			break
		}
		idx += cur
		if idx > cur {
			parts = append(parts, HighlightPart{Text: text[cur:idx]})
		}
		parts = append(parts, HighlightPart{Text: text[idx : idx+len(needle)], Highlighted: true})
		cur = idx + len(needle)
	}
	if cur < len(text) {
		parts = append(parts, HighlightPart{Text: text[cur:]})
	}
	if len(parts) == 0 {
		parts = append(parts, HighlightPart{Text: text})
	}
	return parts
}

// SearchStats résume un résultat de recherche pour l'en-tête de la vue.
type SearchStats struct {
	Total     int `json:"total"`
	Filtered  int `json:"filtered"`
	OnAir     int `json:"onAir"`
	Cancelled int `json:"cancelled"`
}

func GetSearchStats(original, filtered []domain.AnimeItem) SearchStats {
	stats := SearchStats{Total: len(original), Filtered: len(filtered)}
	for _, item := range filtered {
		switch item.Status {
		case domain.StatusOnAir:
			stats.OnAir++
		case domain.StatusOffAir:
			stats.Cancelled++
		}
	}
	return stats
}

// GetPopularGenres renvoie les genres les plus fréquents de la liste.
func GetPopularGenres(items []domain.AnimeItem, limit int) []string {
	if limit <= 0 {
		limit = 10
	}
	counts := map[string]int{}
	for _, item := range items {
		for _, g := range domain.SplitGenres(item.Genres) {
			counts[g]++
		}
	}

	genres := make([]string, 0, len(counts))
	for g := range counts {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool {
		if counts[genres[i]] != counts[genres[j]] {
			return counts[genres[i]] > counts[genres[j]]
		}
		return genres[i] < genres[j]
	})
	if len(genres) > limit {
		genres = genres[:limit]
	}
	return genres
}

// GetSuggestions propose jusqu'à cinq complétions (titres, titres originaux,
// genres) pour une requête d'au moins deux caractères.
func GetSuggestions(items []domain.AnimeItem, query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if len([]rune(query)) < 2 {
		return nil
	}

	seen := map[string]struct{}{}
	suggestions := []string{}
	add := func(s string) {
		if len(suggestions) >= 5 {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		suggestions = append(suggestions, s)
	}

	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Subject), query) {
			add(item.Subject)
		}
		if item.OriginalSubject != "" && strings.Contains(strings.ToLower(item.OriginalSubject), query) {
			add(item.OriginalSubject)
		}
		for _, g := range domain.SplitGenres(item.Genres) {
			if strings.Contains(strings.ToLower(g), query) {
				add(g)
			}
		}
	}
	return suggestions
}
