package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"fintrack/internal/chart"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

type dashboardPage struct {
	page
	Dashboard services.Dashboard
	Selectors []core.Selector
	Ledger    ledgerView
	ShowChart bool
}

// ledgerView is the data of the ledger_page partial.
type ledgerView struct {
	Page     services.LedgerPage
	Selector string
	Demo     bool
}

// MoreURL is the address of the page after this one.
func (v ledgerView) MoreURL() string {
	q := url.Values{}
	q.Set("range", v.Selector)
	q.Set("offset", strconv.Itoa(v.Page.NextOffset))
	return "/ui/transactions?" + q.Encode()
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	selector := rangeSelector(r.URL.Query(), sess.User.Metadata)

	dash, err := s.dashboard.Load(r.Context(), sess.User.ID, selector, 0)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Dashboard load failed",
			log.FieldUserID, sess.User.ID,
			log.FieldSelector, selector,
			log.FieldError, err)
		InternalServerError("Could not load your transactions. Please try again.").Write(w)
		return
	}

	title := "Dashboard"
	if dash.Demo {
		title = "Demo dashboard"
	}
	data := dashboardPage{
		page:      s.newPage(r, title),
		Dashboard: dash,
		Selectors: core.Selectors(),
		Ledger:    ledgerView{Page: dash.Page, Selector: dash.Selector, Demo: dash.Demo},
		ShowChart: len(dash.Page.Ledger) > 1 || dash.Page.HasMore,
	}
	s.render(w, r, http.StatusOK, "dashboard.html", data)
}

// handleLedgerPage renders the next ledger page for infinite scroll.
func (s *Server) handleLedgerPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	selector := rangeSelector(r.URL.Query(), sess.User.Metadata)
	offset := ParseOffset(r.URL.Query())

	pg, err := s.dashboard.Page(r.Context(), sess.User.ID, selector, offset)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Ledger page failed",
			log.FieldUserID, sess.User.ID,
			log.FieldOffset, offset,
			log.FieldError, err)
		InternalServerError("Could not load more transactions").Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "ledger_page", ledgerView{Page: pg, Selector: selector, Demo: sess.User.ID == ""})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	selector := rangeSelector(r.URL.Query(), sess.User.Metadata)

	ledger, _, err := s.dashboard.Chart(r.Context(), sess.User.ID, selector)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Chart data failed",
			log.FieldUserID, sess.User.ID,
			log.FieldSelector, selector,
			log.FieldError, err)
		http.Error(w, "chart unavailable", http.StatusInternalServerError)
		return
	}

	png, err := chart.RenderPNG(ledger)
	if errors.Is(err, chart.ErrNotEnoughData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Chart render failed",
			log.FieldOperation, log.OpRender,
			log.FieldError, err)
		http.Error(w, "chart unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, no-cache")
	_, _ = w.Write(png)
}
