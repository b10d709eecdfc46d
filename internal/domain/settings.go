package domain

type Settings struct {
	// Intervalles de refresh en secondes. Le refresh "subscription" tourne
	// environ deux fois plus souvent que le refresh général.
	GeneralRefreshSeconds      int `json:"generalRefreshSeconds"`
	SubscriptionRefreshSeconds int `json:"subscriptionRefreshSeconds"`

	// Concurrence du fan-out des fetchs par jour de la semaine.
	MaxConcurrentFetches int `json:"maxConcurrentFetches"`
}

func DefaultSettings() Settings {
	return Settings{
		GeneralRefreshSeconds:      60,
		SubscriptionRefreshSeconds: 30,
		MaxConcurrentFetches:       4,
	}
}
