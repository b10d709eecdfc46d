package app

import (
	"errors"

	"github.com/yldst-dev/anitime/internal/ports"
)

var ErrNotFound = ports.ErrNotFound

// Codes d'erreur stables exposés aux handlers HTTP.
const (
	CodeNetworkError  = "network_error"
	CodeFormatError   = "format_error"
	CodeImportInvalid = "import_invalid"
)

// CodedError porte un code stable en plus du message, pour que les handlers
// puissent distinguer panne transport / payload invalide sans parser du texte.
type CodedError struct {
	Code    string
	Message string
	Status  int // statut HTTP upstream, 0 si non applicable
	Err     error
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *CodedError) Unwrap() error { return e.Err }

// ErrorCode extrait le code d'un CodedError dans la chaîne, ou "".
func ErrorCode(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}
