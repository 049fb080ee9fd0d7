// Package api holds the JSON envelope every endpoint answers with and the
// request decoding and validation shared by the handlers.
package api

import (
	"errors"
	"net/http"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

type Envelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// Responder writes envelopes. Debug exposes the cause of internal errors.
type Responder struct {
	Debug bool
}

func NewResponder(debug bool) *Responder {
	return &Responder{Debug: debug}
}

func (rs *Responder) OK(w http.ResponseWriter, data any, message string) {
	rs.Write(w, http.StatusOK, data, message)
}

func (rs *Responder) Created(w http.ResponseWriter, data any, message string) {
	rs.Write(w, http.StatusCreated, data, message)
}

func (rs *Responder) Write(w http.ResponseWriter, status int, data any, message string) {
	pkg.WriteJSON(w, status, Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// Err translates err into a failed envelope. Unclassified errors are logged
// and reported as internal.
func (rs *Responder) Err(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal(err)
	}

	env := Envelope{
		Success: false,
		Message: appErr.Message,
		Errors:  appErr.Fields,
		Data:    appErr.Details,
	}

	if appErr.Kind == apperr.KindInternal {
		log.Errorf("internal error: %s", err)
		if rs.Debug {
			env.Error = err.Error()
		}
	}

	pkg.WriteJSON(w, StatusFor(appErr.Kind), env)
}

func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidationFailed:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidTransition:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Page is the paginated list shape.
type Page struct {
	Data        any `json:"data"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

func NewPage(data any, page, perPage, total int) Page {
	lastPage := 1
	if perPage > 0 && total > 0 {
		lastPage = (total + perPage - 1) / perPage
	}
	return Page{
		Data:        data,
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    lastPage,
	}
}
