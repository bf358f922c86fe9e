// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// It reduces code duplication by providing reusable functions for common
// form parsing, paging and input sanitization patterns.

package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// TransactionForm holds the raw values of the transaction form so a failed
// submission can be re-rendered as typed.
type TransactionForm struct {
	Type        string
	Category    string
	Amount      string
	Description string
	Date        string
}

// ReadTransactionForm extracts and sanitizes the transaction fields.
func ReadTransactionForm(form url.Values) TransactionForm {
	return TransactionForm{
		Type:        sanitizeInput(form.Get("type")),
		Category:    sanitizeInput(form.Get("category")),
		Amount:      sanitizeInput(form.Get("amount")),
		Description: sanitizeInput(form.Get("description")),
		Date:        sanitizeInput(form.Get("date")),
	}
}

// Input converts the form to a transaction input. An empty date means
// today. Field rules beyond parsing are left to core validation.
func (f TransactionForm) Input(today core.Date) (core.TransactionInput, error) {
	typ, err := core.ParseTransactionType(f.Type)
	if err != nil {
		return core.TransactionInput{}, err
	}
	amount, err := core.ParseAmount(f.Amount)
	if err != nil {
		return core.TransactionInput{}, err
	}
	date := today
	if f.Date != "" {
		if date, err = core.ParseDate(f.Date); err != nil {
			return core.TransactionInput{}, err
		}
	}
	in := core.TransactionInput{
		Type:        typ,
		Category:    f.Category,
		Amount:      amount,
		Description: f.Description,
		Date:        date,
	}
	return in, in.Validate()
}

// formFromTransaction pre-fills the edit form.
func formFromTransaction(tx core.Transaction) TransactionForm {
	return TransactionForm{
		Type:        tx.Type.String(),
		Category:    tx.Category,
		Amount:      tx.Amount.StringFixed(2),
		Description: tx.Description,
		Date:        tx.Date.String(),
	}
}

// ParseOffset reads a non-negative "offset" query value, defaulting to 0.
func ParseOffset(query url.Values) int {
	v := strings.TrimSpace(query.Get("offset"))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// rangeSelector picks the "range" query value, then the user's preferred
// view, then the default. Unknown values fall through to the next source.
func rangeSelector(query url.Values, meta core.UserMetadata) string {
	if v := strings.TrimSpace(query.Get("range")); core.IsSelector(v) {
		return v
	}
	return meta.DefaultSelector()
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *Reply {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(methods...)
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *Reply {
	return RequireMethod(r, http.MethodPost)
}

// RequireDeleteOrPOST is a convenience function for DELETE/POST handlers.
func RequireDeleteOrPOST(r *http.Request) *Reply {
	return RequireMethod(r, http.MethodDelete, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *Reply {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
