package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestTransactionFormInput(t *testing.T) {
	today := core.NewDate(2024, 5, 20)

	tests := []struct {
		name     string
		form     url.Values
		wantErr  error
		wantType core.TransactionType
		wantAmt  string
		wantDate string
	}{
		{
			name:     "expense with comma amount",
			form:     url.Values{"type": {"expense"}, "category": {" Food "}, "amount": {"12,5"}, "date": {"2024-05-01"}},
			wantType: core.Expense,
			wantAmt:  "12.50",
			wantDate: "2024-05-01",
		},
		{
			name:     "income defaults date to today",
			form:     url.Values{"type": {"Income"}, "amount": {"2500"}},
			wantType: core.Income,
			wantAmt:  "2500.00",
			wantDate: "2024-05-20",
		},
		{
			name:    "unknown type",
			form:    url.Values{"type": {"Gift"}, "amount": {"1"}},
			wantErr: core.ErrInvalidType,
		},
		{
			name:    "negative amount",
			form:    url.Values{"type": {"Income"}, "amount": {"-3"}},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "expense without category",
			form:    url.Values{"type": {"Expense"}, "amount": {"3"}},
			wantErr: core.ErrMissingCategory,
		},
		{
			name:    "bad date",
			form:    url.Values{"type": {"Saving"}, "amount": {"3"}, "date": {"20/05/2024"}},
			wantErr: core.ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ReadTransactionForm(tt.form).Input(today)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if in.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", in.Type, tt.wantType)
			}
			if got := in.Amount.StringFixed(2); got != tt.wantAmt {
				t.Errorf("Amount = %s, want %s", got, tt.wantAmt)
			}
			if got := in.Date.String(); got != tt.wantDate {
				t.Errorf("Date = %s, want %s", got, tt.wantDate)
			}
		})
	}
}

func TestReadTransactionFormSanitizes(t *testing.T) {
	f := ReadTransactionForm(url.Values{"description": {"  lunch\x00\x07 with team\t"}})
	if f.Description != "lunch with team" {
		t.Fatalf("Description = %q", f.Description)
	}
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 0},
		{"10", 10},
		{"-5", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		q := url.Values{}
		if tt.raw != "" {
			q.Set("offset", tt.raw)
		}
		if got := ParseOffset(q); got != tt.want {
			t.Errorf("ParseOffset(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestRangeSelector(t *testing.T) {
	tests := []struct {
		name  string
		query string
		view  string
		want  string
	}{
		{"query wins", "last7days", "last90days", core.Last7Days},
		{"preferred view", "", "last90days", core.Last90Days},
		{"unknown query falls back to view", "forever", "last365days", core.Last365Days},
		{"default", "", "", core.Last30Days},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := url.Values{"range": {tt.query}}
			got := rangeSelector(q, core.UserMetadata{DefaultView: tt.view})
			if got != tt.want {
				t.Fatalf("rangeSelector = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		allowed []string
		wantErr bool
	}{
		{"POST allowed", http.MethodPost, []string{http.MethodPost}, false},
		{"DELETE allowed with multiple", http.MethodDelete, []string{http.MethodDelete, http.MethodPost}, false},
		{"GET not allowed", http.MethodGet, []string{http.MethodPost}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			result := RequireMethod(req, tt.allowed...)

			if tt.wantErr && result == nil {
				t.Error("Expected error response but got nil")
			}
			if !tt.wantErr && result != nil {
				t.Error("Expected nil but got error response")
			}
		})
	}
}

func TestRequireDeleteOrPOST(t *testing.T) {
	tests := []struct {
		method  string
		wantErr bool
	}{
		{http.MethodPost, false},
		{http.MethodDelete, false},
		{http.MethodGet, true},
		{http.MethodPut, true},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			result := RequireDeleteOrPOST(req)

			if tt.wantErr && result == nil {
				t.Error("Expected error response but got nil")
			}
			if !tt.wantErr && result != nil {
				t.Error("Expected nil but got error response")
			}
		})
	}
}

func TestParseFormOrFail(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("field=value"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if result := ParseFormOrFail(req); result != nil {
		t.Error("Expected nil for valid form, got error response")
	}
	if req.Form.Get("field") != "value" {
		t.Error("Form was not parsed correctly")
	}

	bad := httptest.NewRequest(http.MethodPost, "/test?%zz", nil)
	if result := ParseFormOrFail(bad); result == nil {
		t.Error("Expected error response for malformed query")
	}
}
