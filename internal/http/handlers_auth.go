package http

import (
	"net/http"

	"fintrack/internal/log"
	"fintrack/internal/services"
)

type authPage struct {
	page
	Email    string
	FullName string
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	if _, ok := sessionFrom(r.Context()); ok {
		redirect(w, r, "/dashboard")
		return
	}

	data := authPage{page: s.newPage(r, "Sign in")}
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "login.html", data)
		return
	}

	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	data.Email = sanitizeInput(r.PostForm.Get("email"))

	sess, err := s.auth.SignIn(r.Context(), data.Email, r.PostForm.Get("password"))
	if err != nil {
		data.Error = services.LoginMessage(err)
		s.render(w, r, http.StatusUnauthorized, "login.html", data)
		return
	}
	s.setSessionCookie(w, sess)
	redirect(w, r, "/dashboard")
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	if _, ok := sessionFrom(r.Context()); ok {
		redirect(w, r, "/dashboard")
		return
	}

	data := authPage{page: s.newPage(r, "Create account")}
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "signup.html", data)
		return
	}

	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	data.Email = sanitizeInput(r.PostForm.Get("email"))
	data.FullName = sanitizeInput(r.PostForm.Get("fullName"))

	out, err := s.auth.SignUp(r.Context(), data.Email, r.PostForm.Get("password"), data.FullName)
	if err != nil {
		data.Error = services.SignUpMessage(err)
		s.render(w, r, http.StatusUnprocessableEntity, "signup.html", data)
		return
	}
	if out.Session != nil {
		s.setSessionCookie(w, *out.Session)
		redirect(w, r, "/dashboard")
		return
	}
	data.Message = out.Message
	s.render(w, r, http.StatusOK, "signup.html", data)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := sessionFrom(r.Context()); ok {
		if err := s.auth.SignOut(r.Context(), sess.Token); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Sign-out failed, clearing cookie anyway",
				log.FieldUserID, sess.User.ID,
				log.FieldError, err)
		}
	}
	s.clearSessionCookie(w)
	redirect(w, r, "/login")
}
