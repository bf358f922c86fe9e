package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func triggers(t *testing.T, rr *httptest.ResponseRecorder) map[string]map[string]any {
	t.Helper()
	raw := rr.Header().Get("HX-Trigger")
	if raw == "" {
		return nil
	}
	var got map[string]map[string]any
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v (%s)", err, raw)
	}
	return got
}

func TestReplyDefaults(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().Write(rr)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rr.Body.String())
	}
	if rr.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger set without events")
	}
}

func TestReplyEvents(t *testing.T) {
	tests := []struct {
		name     string
		reply    *Reply
		wantType string
		wantMs   float64
	}{
		{
			name:     "deleted with success toast",
			reply:    NewHTMXResponse().TriggerTransactionChanged("deleted", "tx-1").Notify(NotifySuccess, "Transaction deleted"),
			wantType: "success",
			wantMs:   3000,
		},
		{
			name:     "error toast lasts longer",
			reply:    NewHTMXResponse().TriggerTransactionChanged("created", "tx-1").Notify(NotifyError, "Transaction deleted"),
			wantType: "error",
			wantMs:   5000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.reply.Write(rr)

			got := triggers(t, rr)
			if changed := got[EventTransactionChanged]; changed["id"] != "tx-1" || changed["kind"] == "" {
				t.Errorf("%s detail = %v", EventTransactionChanged, changed)
			}
			note := got[EventNotification]
			if note["type"] != tt.wantType || note["message"] != "Transaction deleted" || note["duration"] != tt.wantMs {
				t.Errorf("notification = %v", note)
			}
		})
	}
}

func TestReplyLaterTriggerWins(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().
		Notify(NotifySuccess, "first").
		Notify(NotifyError, "second").
		Write(rr)

	if note := triggers(t, rr)[EventNotification]; note["message"] != "second" {
		t.Errorf("notification = %v, want the second one", note)
	}
}

func TestReplyHeaderAndStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().
		Header("HX-Redirect", "/dashboard").
		Status(http.StatusCreated).
		Write(rr)

	if rr.Header().Get("HX-Redirect") != "/dashboard" {
		t.Error("HX-Redirect not set")
	}
	if rr.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "" {
		t.Errorf("empty reply should not claim a content type, got %q", rr.Header().Get("Content-Type"))
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		reply      *Reply
		wantStatus int
		wantBody   string
	}{
		{"bad request", BadRequestError("Invalid input"), http.StatusBadRequest, `<div class="error" role="alert">Invalid input</div>`},
		{"server error", InternalServerError("Something broke"), http.StatusInternalServerError, `<div class="error" role="alert">Something broke</div>`},
		{"too many", ErrorResponse(http.StatusTooManyRequests, "Slow down"), http.StatusTooManyRequests, `<div class="error" role="alert">Slow down</div>`},
		{"escaped", BadRequestError("<script>alert('x')</script>"), http.StatusBadRequest, `<div class="error" role="alert">&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;</div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.reply.Write(rr)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if rr.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rr.Body.String(), tt.wantBody)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestMethodNotAllowedError(t *testing.T) {
	rr := httptest.NewRecorder()
	MethodNotAllowedError(http.MethodGet, http.MethodPost).Write(rr)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
	if got := rr.Header().Get("Allow"); got != "GET, POST" {
		t.Errorf("Allow = %q, want %q", got, "GET, POST")
	}
}
