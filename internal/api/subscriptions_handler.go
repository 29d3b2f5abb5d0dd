package api

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/metrics"
	"github.com/ignite/newsletter/internal/pkg/httputil"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/service/subscription"
)

const maxFormBytes = 64 << 10

// Subscriber is the intake operation the handler drives.
type Subscriber interface {
	Subscribe(ctx context.Context, name, email string) (*domain.Subscriber, error)
}

// SubscriptionHandler serves POST /subscriptions.
type SubscriptionHandler struct {
	svc     Subscriber
	metrics *metrics.Recorder
}

// NewSubscriptionHandler creates a handler. rec may be nil.
func NewSubscriptionHandler(svc Subscriber, rec *metrics.Recorder) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc, metrics: rec}
}

// HandleSubscribe accepts a form-encoded name and email.
//
//	POST /subscriptions
func (h *SubscriptionHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.metrics.ObserveIntake(string(subscription.OutcomeRejected), time.Since(start))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.ErrorWithCode(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body exceeds 64 KiB")
			return
		}
		httputil.ErrorWithCode(w, http.StatusBadRequest, "invalid_form", "request body must be a url-encoded form")
		return
	}

	name, nameOK := formValue(r, "name")
	email, emailOK := formValue(r, "email")
	if !nameOK || !emailOK {
		h.metrics.ObserveIntake(string(subscription.OutcomeRejected), time.Since(start))
		httputil.ErrorWithCode(w, http.StatusBadRequest, "missing_field", "name and email are required")
		return
	}
	if !utf8.ValidString(name) || !utf8.ValidString(email) {
		h.metrics.ObserveIntake(string(subscription.OutcomeRejected), time.Since(start))
		httputil.ErrorWithCode(w, http.StatusBadRequest, "invalid_form", "form fields must be valid UTF-8")
		return
	}

	sub, err := h.svc.Subscribe(r.Context(), name, email)
	h.metrics.ObserveIntake(string(subscription.OutcomeOf(err)), time.Since(start))
	switch {
	case err == nil:
		logger.Info("subscriber accepted", "request_id", reqID, "id", sub.ID, "email", sub.Email)
		httputil.OK(w, sub)
	case errors.Is(err, domain.ErrInvalidName):
		logger.Info("subscription rejected", "request_id", reqID, "reason", "invalid_name")
		httputil.ErrorWithCode(w, http.StatusBadRequest, "invalid_name", "name is empty, too long or contains forbidden characters")
	case errors.Is(err, domain.ErrInvalidEmail):
		logger.Info("subscription rejected", "request_id", reqID, "reason", "invalid_email", "email", email)
		httputil.ErrorWithCode(w, http.StatusBadRequest, "invalid_email", "email is not a valid address")
	default:
		httputil.InternalError(w, err, "request_id", reqID, "op", "subscribe")
	}
}

// formValue reads a field from the request body only. The bool is false when
// the field was not sent at all.
func formValue(r *http.Request, key string) (string, bool) {
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
