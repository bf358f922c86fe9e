package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/objectstore"
	"fintrack/internal/services"
)

// maxUploadBytes bounds the multipart body. Files between the stored limit
// and this size still get a chance to shrink under compression.
const maxUploadBytes = 4 * core.MaxAvatarBytes

type settingsPage struct {
	page
	FullName    string
	DefaultView string
	Selectors   []core.Selector
}

func (s *Server) settingsPage(r *http.Request, user core.User) settingsPage {
	p := s.newPage(r, "Settings")
	p.User = &user
	p.Avatar = s.profile.AvatarURL(user.Metadata)
	return settingsPage{
		page:        p,
		FullName:    user.Metadata.FullName,
		DefaultView: user.Metadata.DefaultSelector(),
		Selectors:   core.Selectors(),
	}
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	sess, _ := sessionFrom(r.Context())
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "settings.html", s.settingsPage(r, sess.User))
		return
	}

	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	user, err := s.profile.UpdateSettings(r.Context(), sess.Token, services.Settings{
		FullName:    sanitizeInput(r.PostForm.Get("fullName")),
		DefaultView: sanitizeInput(r.PostForm.Get("defaultView")),
	})
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Settings update failed",
			log.FieldUserID, sess.User.ID,
			log.FieldError, err)
		data := s.settingsPage(r, sess.User)
		data.Error = "Failed to save settings. Please try again."
		s.render(w, r, http.StatusInternalServerError, "settings.html", data)
		return
	}

	data := s.settingsPage(r, user)
	data.Message = "Settings saved"
	s.render(w, r, http.StatusOK, "settings.html", data)
}

func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	sess, _ := sessionFrom(r.Context())
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "avatar.html", s.settingsPage(r, sess.User))
		return
	}

	file, err := readAvatarUpload(w, r)
	if err != nil {
		data := s.settingsPage(r, sess.User)
		data.Error = services.AvatarMessage(err)
		s.render(w, r, avatarErrorStatus(err), "avatar.html", data)
		return
	}

	res, err := s.profile.UploadAvatar(r.Context(), sess.Token, file)
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Avatar upload failed",
			log.FieldOperation, log.OpUpload,
			log.FieldUserID, sess.User.ID,
			log.FieldError, err)
		data := s.settingsPage(r, sess.User)
		data.Error = services.AvatarMessage(err)
		s.render(w, r, avatarErrorStatus(err), "avatar.html", data)
		return
	}

	data := s.settingsPage(r, res.User)
	data.Message = res.Message
	s.render(w, r, http.StatusOK, "avatar.html", data)
}

// readAvatarUpload reads the "avatar" file field. A missing field is an
// empty file.
func readAvatarUpload(w http.ResponseWriter, r *http.Request) (services.AvatarFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(core.AvatarCompressThreshold); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return services.AvatarFile{}, core.ErrFileTooLarge
		}
		return services.AvatarFile{}, core.ErrEmptyFile
	}
	f, header, err := r.FormFile("avatar")
	if err != nil {
		return services.AvatarFile{}, core.ErrEmptyFile
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return services.AvatarFile{}, err
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" && len(data) > 0 {
		contentType = http.DetectContentType(data)
	}
	return services.AvatarFile{ContentType: contentType, Data: data}, nil
}

func avatarErrorStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrEmptyFile), errors.Is(err, core.ErrUnsupportedFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// handleAvatarObject serves avatars kept in the local bucket.
func (s *Server) handleAvatarObject(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if s.avatars == nil || !objectstore.ValidName(name) {
		http.NotFound(w, r)
		return
	}

	data, err := s.avatars.Open(name)
	if errors.Is(err, core.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Avatar read failed",
			log.FieldObject, name,
			log.FieldError, err)
		http.Error(w, "avatar unavailable", http.StatusInternalServerError)
		return
	}

	contentType := mime.TypeByExtension(strings.ToLower(path.Ext(name)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(data)
}
