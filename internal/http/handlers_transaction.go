package http

import (
	"errors"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
	"fintrack/internal/services"
)

type transactionPage struct {
	page
	Action     string
	ID         string
	Form       TransactionForm
	Types      []core.TransactionType
	Categories []string
}

func (s *Server) transactionPage(r *http.Request, id string, form TransactionForm) transactionPage {
	title, action := "New transaction", "/transactions"
	if id != "" {
		title, action = "Edit transaction", "/transactions/"+id
	}
	return transactionPage{
		page:       s.newPage(r, title),
		Action:     action,
		ID:         id,
		Form:       form,
		Types:      core.AllTransactionTypes(),
		Categories: s.categories,
	}
}

// sessionOrReject answers anonymous form posts: HTMX callers get a 401
// fragment, browsers are sent to the login page.
func sessionOrReject(w http.ResponseWriter, r *http.Request) (session, bool) {
	sess, ok := sessionFrom(r.Context())
	if ok {
		return sess, true
	}
	if isHTMX(r) {
		ErrorResponse(http.StatusUnauthorized, services.TransactionMessage(core.ErrUnauthenticated)).Write(w)
	} else {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
	return session{}, false
}

func (s *Server) handleNewTransaction(w http.ResponseWriter, r *http.Request) {
	form := TransactionForm{
		Type: core.Expense.String(),
		Date: core.DateOf(time.Now().UTC()).String(),
	}
	if t, err := core.ParseTransactionType(r.URL.Query().Get("type")); err == nil {
		form.Type = t.String()
	}
	s.render(w, r, http.StatusOK, "transaction_form.html", s.transactionPage(r, "", form))
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	id := r.PathValue("id")

	tx, err := s.transactions.Get(r.Context(), sess.User.ID, id)
	if err != nil {
		s.transactionError(w, r, id, TransactionForm{}, err)
		return
	}
	s.render(w, r, http.StatusOK, "transaction_form.html", s.transactionPage(r, id, formFromTransaction(tx)))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrReject(w, r)
	if !ok {
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	form := ReadTransactionForm(r.PostForm)
	in, err := form.Input(core.DateOf(time.Now().UTC()))
	if err == nil {
		var tx core.Transaction
		tx, err = s.transactions.Create(r.Context(), sess.User.ID, in)
		if err == nil {
			s.transactionDone(w, r, string(ports.EventCreated), tx.ID, "Transaction added")
			return
		}
	}
	s.transactionError(w, r, "", form, err)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrReject(w, r)
	if !ok {
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id := r.PathValue("id")
	form := ReadTransactionForm(r.PostForm)
	in, err := form.Input(core.DateOf(time.Now().UTC()))
	if err == nil {
		_, err = s.transactions.Update(r.Context(), sess.User.ID, id, in)
		if err == nil {
			s.transactionDone(w, r, string(ports.EventUpdated), id, "Transaction updated")
			return
		}
	}
	s.transactionError(w, r, id, form, err)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}
	sess, ok := sessionOrReject(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if err := s.transactions.Delete(r.Context(), sess.User.ID, id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrNotFound) {
			status = http.StatusNotFound
		}
		ErrorResponse(status, services.TransactionMessage(err)).
			Notify(NotifyError, services.TransactionMessage(err)).
			Write(w)
		return
	}

	if isHTMX(r) {
		// Empty body: the row swaps itself out.
		NewHTMXResponse().
			TriggerTransactionChanged(string(ports.EventDeleted), id).
			Notify(NotifySuccess, "Transaction deleted").
			Write(w)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) transactionDone(w http.ResponseWriter, r *http.Request, kind, id, message string) {
	if isHTMX(r) {
		NewHTMXResponse().
			TriggerTransactionChanged(kind, id).
			Notify(NotifySuccess, message).
			Header("HX-Redirect", "/dashboard").
			Write(w)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// transactionError re-renders the form with the user-facing message for err.
func (s *Server) transactionError(w http.ResponseWriter, r *http.Request, id string, form TransactionForm, err error) {
	status := http.StatusUnprocessableEntity
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case isValidationError(err):
	default:
		status = http.StatusInternalServerError
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction write failed",
			log.FieldUserID, userID(r.Context()),
			log.FieldTransactionID, id,
			log.FieldError, err)
	}

	data := s.transactionPage(r, id, form)
	data.Error = services.TransactionMessage(err)
	s.render(w, r, status, "transaction_form.html", data)
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidType,
		core.ErrMissingCategory,
		core.ErrCategoryTooLong,
		core.ErrDescriptionTooLong,
		core.ErrInvalidDate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
