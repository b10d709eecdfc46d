package domain

import (
	"strings"
	"time"
)

// Weekday est un des neuf groupements du planning Anissia:
// sept jours calendaires + les buckets "other" (7) et "new" (8).
type Weekday int

const (
	WeekSunday Weekday = iota
	WeekMonday
	WeekTuesday
	WeekWednesday
	WeekThursday
	WeekFriday
	WeekSaturday
	WeekOther
	WeekNew
)

// CalendarWeekdays are the seven buckets covered by background polling.
// "other" and "new" are reachable on demand but never polled.
var CalendarWeekdays = []Weekday{
	WeekSunday, WeekMonday, WeekTuesday, WeekWednesday,
	WeekThursday, WeekFriday, WeekSaturday,
}

// AllWeekdays lists every bucket, in the order the resolver scans them.
var AllWeekdays = []Weekday{
	WeekSunday, WeekMonday, WeekTuesday, WeekWednesday,
	WeekThursday, WeekFriday, WeekSaturday, WeekOther, WeekNew,
}

func (w Weekday) Valid() bool {
	return w >= WeekSunday && w <= WeekNew
}

func (w Weekday) String() string {
	switch w {
	case WeekSunday:
		return "sunday"
	case WeekMonday:
		return "monday"
	case WeekTuesday:
		return "tuesday"
	case WeekWednesday:
		return "wednesday"
	case WeekThursday:
		return "thursday"
	case WeekFriday:
		return "friday"
	case WeekSaturday:
		return "saturday"
	case WeekOther:
		return "other"
	case WeekNew:
		return "new"
	default:
		return "unknown"
	}
}

const (
	StatusOnAir  = "ON"
	StatusOffAir = "OFF"
)

// AnimeItem est une entrée du planning telle que renvoyée par l'API.
// Snapshot immuable pour une requête donnée.
type AnimeItem struct {
	AnimeNo         int    `json:"animeNo"`
	Status          string `json:"status"`
	Time            string `json:"time"`
	Subject         string `json:"subject"`
	OriginalSubject string `json:"originalSubject,omitempty"`
	Genres          string `json:"genres"`
	StartDate       string `json:"startDate,omitempty"`
	EndDate         string `json:"endDate,omitempty"`
	Website         string `json:"website,omitempty"`
	CaptionCount    int    `json:"captionCount"`
	Week            string `json:"week,omitempty"`
	Twitter         string `json:"twitter,omitempty"`
}

// FormatTime normalise les formes placeholder "99" du champ time:
// "yyyy-MM-99" devient "yyyy-MM", "yyyy-99-99" devient "yyyy".
func FormatTime(t string) string {
	if t == "" {
		return "N/A"
	}
	if strings.Contains(t, "99") {
		if strings.Contains(t, "-99-99") {
			return strings.SplitN(t, "-", 2)[0]
		}
		if strings.HasSuffix(t, "-99") {
			return strings.TrimSuffix(t, "-99")
		}
	}
	return t
}

// SplitGenres découpe la chaîne de genres séparés par des virgules.
func SplitGenres(genres string) []string {
	if strings.TrimSpace(genres) == "" {
		return nil
	}
	parts := strings.Split(genres, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			out = append(out, g)
		}
	}
	return out
}

type AirStatus string

const (
	AirNormal    AirStatus = "normal"
	AirNew       AirStatus = "new"
	AirCompleted AirStatus = "completed"
	AirCancelled AirStatus = "cancelled"
)

// DeriveAirStatus calcule le statut d'affichage à partir du snapshot.
// Les buckets "other"/"new" n'ont pas de dates fiables: toujours normal/cancelled.
func DeriveAirStatus(item AnimeItem, week Weekday, now time.Time) AirStatus {
	if item.Status == StatusOffAir {
		return AirCancelled
	}
	if week >= WeekOther {
		return AirNormal
	}
	if item.StartDate != "" {
		if start, err := time.Parse("2006-01-02", item.StartDate); err == nil && !start.Before(now) {
			return AirNew
		}
	}
	if item.EndDate != "" {
		if end, err := time.Parse("2006-01-02", item.EndDate); err == nil && !end.After(now) {
			return AirCompleted
		}
	}
	return AirNormal
}
