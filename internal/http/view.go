package http

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

var templateFuncs = template.FuncMap{
	"money": core.FormatAmount,
	"signed": func(tx core.Transaction) string {
		amt := tx.SignedAmount()
		if amt.IsPositive() {
			return "+" + core.FormatAmount(amt)
		}
		return core.FormatAmount(amt)
	},
	"netClass": func(d decimal.Decimal) string {
		switch {
		case d.IsPositive():
			return "positive"
		case d.IsNegative():
			return "negative"
		}
		return "neutral"
	},
	"pct": func(f float64) string {
		return fmt.Sprintf("%.1f%%", math.Abs(f))
	},
	"lower": strings.ToLower,
	"dayLabel": func(key string) string {
		d, err := core.ParseDate(key)
		if err != nil {
			return key
		}
		return d.Format("Mon, Jan 2 2006")
	},
	"avatarSrc": avatarSrc,
}

// avatarSrc marks inline image data URLs as safe for src attributes; other
// values go through html/template's normal URL filtering.
func avatarSrc(u string) any {
	if strings.HasPrefix(u, "data:image/") {
		return template.URL(u)
	}
	return u
}

// page carries what the layout needs on every full page.
type page struct {
	Title   string
	User    *core.User
	Avatar  string
	Message string
	Error   string
}

// newPage fills the layout fields for the current visitor.
func (s *Server) newPage(r *http.Request, title string) page {
	p := page{Title: title}
	if sess, ok := sessionFrom(r.Context()); ok {
		user := sess.User
		p.User = &user
		if s.profile != nil {
			p.Avatar = s.profile.AvatarURL(user.Metadata)
		}
	}
	return p
}

// render executes a template into a buffer first so a failing template
// never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	logger := log.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldErrorType, log.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldOperation, log.OpRender,
			"template", name,
			log.FieldError, err)
		InternalServerError("Something went wrong rendering this page").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
