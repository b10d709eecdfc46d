package ports

import "errors"

// ErrNotFound est renvoyé quand aucune souscription ne correspond à l'animeNo.
var ErrNotFound = errors.New("not found")
