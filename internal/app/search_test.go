package app

import (
	"reflect"
	"testing"

	"github.com/yldst-dev/anitime/internal/domain"
)

func sampleAnime() []domain.AnimeItem {
	return []domain.AnimeItem{
		{AnimeNo: 1, Subject: "장송의 프리렌", OriginalSubject: "葬送のフリーレン", Genres: "판타지,모험", Status: domain.StatusOnAir},
		{AnimeNo: 2, Subject: "원피스", OriginalSubject: "ONE PIECE", Genres: "모험,액션", Status: domain.StatusOnAir},
		{AnimeNo: 3, Subject: "주술회전", Genres: "액션,판타지", Status: domain.StatusOffAir},
	}
}

func TestSearchAnime_Query(t *testing.T) {
	items := sampleAnime()

	got := SearchAnime(items, SearchFilters{Query: "프리렌"})
	if len(got) != 1 || got[0].AnimeNo != 1 {
		t.Fatalf("title search failed: %+v", got)
	}

	// Le titre original matche aussi, indépendamment de la casse.
	got = SearchAnime(items, SearchFilters{Query: "one piece"})
	if len(got) != 1 || got[0].AnimeNo != 2 {
		t.Fatalf("original title search failed: %+v", got)
	}

	// Un genre matche comme sous-chaîne.
	got = SearchAnime(items, SearchFilters{Query: "판타지"})
	if len(got) != 2 {
		t.Fatalf("genre query should match 2 items, got %d", len(got))
	}

	// Requête vide: tout passe.
	if got = SearchAnime(items, SearchFilters{}); len(got) != 3 {
		t.Fatalf("empty filters should return everything, got %d", len(got))
	}
}

func TestSearchAnime_GenresAndStatus(t *testing.T) {
	items := sampleAnime()

	got := SearchAnime(items, SearchFilters{Genres: []string{"액션"}})
	if len(got) != 2 {
		t.Fatalf("genre filter: want 2, got %d", len(got))
	}

	got = SearchAnime(items, SearchFilters{Genres: []string{"액션"}, Status: domain.StatusOffAir})
	if len(got) != 1 || got[0].AnimeNo != 3 {
		t.Fatalf("combined filter failed: %+v", got)
	}
}

func TestHighlightText(t *testing.T) {
	parts := HighlightText("One Piece Film", "piece")
	want := []HighlightPart{
		{Text: "One "},
		{Text: "Piece", Highlighted: true},
		{Text: " Film"},
	}
	if !reflect.DeepEqual(parts, want) {
		t.Fatalf("got %+v", parts)
	}

	// Sans requête: un seul fragment non marqué.
	parts = HighlightText("abc", "")
	if len(parts) != 1 || parts[0].Highlighted {
		t.Fatalf("got %+v", parts)
	}

	// Sans occurrence: le texte complet, non marqué.
	parts = HighlightText("abc", "zzz")
	if len(parts) != 1 || parts[0].Text != "abc" || parts[0].Highlighted {
		t.Fatalf("got %+v", parts)
	}
}

func TestGetSearchStats(t *testing.T) {
	items := sampleAnime()
	filtered := SearchAnime(items, SearchFilters{Genres: []string{"액션"}})

	stats := GetSearchStats(items, filtered)
	if stats.Total != 3 || stats.Filtered != 2 || stats.OnAir != 1 || stats.Cancelled != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestGetPopularGenres(t *testing.T) {
	got := GetPopularGenres(sampleAnime(), 2)
	// 모험, 액션, 판타지 apparaissent chacun deux fois; départage alphabétique.
	want := []string{"모험", "액션"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestGetSuggestions(t *testing.T) {
	items := sampleAnime()

	if got := GetSuggestions(items, "원"); got != nil {
		t.Fatalf("single-rune query should not suggest, got %v", got)
	}

	got := GetSuggestions(items, "피스")
	if len(got) != 1 || got[0] != "원피스" {
		t.Fatalf("got %v", got)
	}

	// La même valeur n'est proposée qu'une fois.
	got = GetSuggestions(items, "판타지")
	if len(got) != 1 || got[0] != "판타지" {
		t.Fatalf("suggestions should be deduplicated, got %v", got)
	}
}
