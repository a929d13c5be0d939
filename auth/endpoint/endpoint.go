// Package endpoint serves the identity-provider redirect callback and hands
// correlated authorizations back to the conversation layer for resumption.
package endpoint

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/viant/agentauth/auth"
)

// ResumeFunc resumes the suspended turn for a correlated authorization and
// returns the user-visible outcome text.
type ResumeFunc func(ctx context.Context, pending *auth.PendingAuthorization) (string, error)

// Handler serves the OAuth redirect callback. A request without both code
// and state query parameters is not a callback and is rejected without
// touching the registry.
type Handler struct {
	correlator *auth.Correlator
	resume     ResumeFunc
	logger     *slog.Logger
}

func (h *Handler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	code, state := query.Get("code"), query.Get("state")
	if code == "" || state == "" {
		http.Error(writer, "not an authorization callback", http.StatusBadRequest)
		return
	}
	pending, err := h.correlator.Correlate(request.Context(), code, state)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			h.logger.Info("authorization callback for unknown state")
			renderPage(writer, http.StatusGone, "Session expired",
				"This authorization is no longer pending. Please return to the conversation and retry your request.")
			return
		}
		h.logger.Error("authorization callback failed", "error", err)
		renderPage(writer, http.StatusInternalServerError, "Authorization failed", err.Error())
		return
	}
	h.logger.Info("authorization callback correlated", "user", pending.UserID, "session", pending.SessionID)
	outcome, err := h.resume(request.Context(), pending)
	if err != nil {
		h.logger.Error("failed to resume turn", "error", err)
		renderPage(writer, http.StatusBadGateway, "Authorization received",
			"Authorization completed, but resuming the conversation failed: "+err.Error())
		return
	}
	renderPage(writer, http.StatusOK, "Authorization complete", outcome)
}

// RegisterHandlers mounts the callback route on mux.
func (h *Handler) RegisterHandlers(mux *http.ServeMux, pattern string) {
	mux.Handle(pattern, h)
}

// renderPage escapes title and detail; both may carry error or agent text.
func renderPage(writer http.ResponseWriter, status int, title, detail string) {
	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(status)
	title = html.EscapeString(title)
	fmt.Fprintf(writer, "<html><head><title>%s</title></head><body><h2>%s</h2><p>%s</p><p>You may close this window.</p></body></html>", title, title, html.EscapeString(detail))
}

// New creates a callback handler.
func New(correlator *auth.Correlator, resume ResumeFunc, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{correlator: correlator, resume: resume, logger: logger}
}
