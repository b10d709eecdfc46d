package domain

import (
	"testing"
	"time"
)

func TestFormatTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "N/A"},
		{"23:00", "23:00"},
		{"2026-07-99", "2026-07"},
		{"2026-99-99", "2026"},
	}
	for _, c := range cases {
		if got := FormatTime(c.in); got != c.want {
			t.Fatalf("FormatTime(%q): want %q, got %q", c.in, c.want, got)
		}
	}
}

func TestSplitGenres(t *testing.T) {
	got := SplitGenres("판타지, 액션 ,개그")
	if len(got) != 3 {
		t.Fatalf("expected 3 genres, got %d (%v)", len(got), got)
	}
	if got[1] != "액션" {
		t.Fatalf("expected trimmed genre, got %q", got[1])
	}
	if SplitGenres("  ") != nil {
		t.Fatalf("blank genres should yield nil")
	}
}

func TestDeriveAirStatus(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	off := AnimeItem{Status: StatusOffAir}
	if got := DeriveAirStatus(off, WeekMonday, now); got != AirCancelled {
		t.Fatalf("OFF: want cancelled, got %s", got)
	}

	upcoming := AnimeItem{Status: StatusOnAir, StartDate: "2026-09-01"}
	if got := DeriveAirStatus(upcoming, WeekMonday, now); got != AirNew {
		t.Fatalf("future start: want new, got %s", got)
	}

	done := AnimeItem{Status: StatusOnAir, EndDate: "2026-08-01"}
	if got := DeriveAirStatus(done, WeekMonday, now); got != AirCompleted {
		t.Fatalf("past end: want completed, got %s", got)
	}

	// Les buckets 7/8 n'ont pas de dates fiables.
	if got := DeriveAirStatus(upcoming, WeekOther, now); got != AirNormal {
		t.Fatalf("other bucket: want normal, got %s", got)
	}

	running := AnimeItem{Status: StatusOnAir, StartDate: "2026-07-01", EndDate: "2026-12-01"}
	if got := DeriveAirStatus(running, WeekMonday, now); got != AirNormal {
		t.Fatalf("running: want normal, got %s", got)
	}
}

func TestWeekdayString(t *testing.T) {
	if WeekSunday.String() != "sunday" || WeekOther.String() != "other" || WeekNew.String() != "new" {
		t.Fatalf("unexpected weekday labels")
	}
	if Weekday(9).Valid() {
		t.Fatalf("weekday 9 should be invalid")
	}
}
