package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
)

// HTMX events the dashboard listens for.
const (
	EventTransactionChanged = "transaction:changed"
	EventNotification       = "show-notification"
)

// NotificationLevel selects the toast style in app.js.
type NotificationLevel string

const (
	NotifySuccess NotificationLevel = "success"
	NotifyError   NotificationLevel = "error"
)

// notificationMillis is how long each toast stays on screen.
var notificationMillis = map[NotificationLevel]int{
	NotifySuccess: 3000,
	NotifyError:   5000,
}

// Reply is a response for HTMX callers: a status, extra headers, client
// events sent in HX-Trigger and an optional HTML fragment.
type Reply struct {
	status   int
	header   http.Header
	events   map[string]any
	fragment string
}

// NewHTMXResponse starts a 200 reply with no body.
func NewHTMXResponse() *Reply {
	return &Reply{
		status: http.StatusOK,
		header: http.Header{},
		events: map[string]any{},
	}
}

func (r *Reply) Status(code int) *Reply {
	r.status = code
	return r
}

func (r *Reply) Header(name, value string) *Reply {
	r.header.Set(name, value)
	return r
}

// Trigger queues a client event. A later call with the same name replaces
// the earlier detail.
func (r *Reply) Trigger(event string, detail any) *Reply {
	r.events[event] = detail
	return r
}

// TriggerTransactionChanged makes the trend cards reload after a write.
func (r *Reply) TriggerTransactionChanged(kind, id string) *Reply {
	return r.Trigger(EventTransactionChanged, map[string]string{"kind": kind, "id": id})
}

// Notify shows a toast.
func (r *Reply) Notify(level NotificationLevel, message string) *Reply {
	return r.Trigger(EventNotification, map[string]any{
		"type":     string(level),
		"message":  message,
		"duration": notificationMillis[level],
	})
}

// Alert sets an escaped error fragment as the body.
func (r *Reply) Alert(message string) *Reply {
	r.fragment = `<div class="error" role="alert">` + template.HTMLEscapeString(message) + `</div>`
	return r
}

func (r *Reply) Write(w http.ResponseWriter) {
	h := w.Header()
	for name, values := range r.header {
		h[name] = values
	}
	if len(r.events) > 0 {
		if payload, err := json.Marshal(r.events); err == nil {
			h.Set("HX-Trigger", string(payload))
		}
	}
	if r.fragment != "" {
		h.Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(r.status)
	if r.fragment != "" {
		_, _ = w.Write([]byte(r.fragment))
	}
}

// ErrorResponse is an alert fragment with the given status.
func ErrorResponse(status int, message string) *Reply {
	return NewHTMXResponse().Status(status).Alert(message)
}

func BadRequestError(message string) *Reply {
	return ErrorResponse(http.StatusBadRequest, message)
}

func InternalServerError(message string) *Reply {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// MethodNotAllowedError is an empty 405 listing the accepted methods.
func MethodNotAllowedError(allowed ...string) *Reply {
	return NewHTMXResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", strings.Join(allowed, ", "))
}
