package server

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-recoform/internal/logging"
	"github.com/goliatone/go-recoform/pkg/form"
	"github.com/goliatone/go-recoform/pkg/model"
)

// maxFormBytes bounds posted form bodies.
const maxFormBytes = 16 << 10

// session resolves the caller's form, starting a session and setting the
// cookie when needed.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*form.Form, bool) {
	var id string
	if cookie, err := r.Cookie(CookieName); err == nil {
		id = cookie.Value
	}
	newID, f, created, err := s.sessions.Acquire(id)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("session unavailable")
		writeError(w, http.StatusServiceUnavailable, "session unavailable")
		return nil, false
	}
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    newID,
			Path:     "/",
			MaxAge:   int(s.cfg.SessionTTL.Seconds()),
			HttpOnly: true,
			Secure:   s.cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return f, true
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.renderSession(w, r, "html")
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.renderSession(w, r, "json")
}

func (s *Server) renderSession(w http.ResponseWriter, r *http.Request, rendererName string) {
	f, ok := s.session(w, r)
	if !ok {
		return
	}
	output, renderer, err := s.orch.Render(r.Context(), f, rendererName)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("renderer", rendererName).Msg("render failed")
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(output)
}

// handleMethod stores the typed identifier into the field bound before the
// switch, then selects the posted method.
func (s *Server) handleMethod(w http.ResponseWriter, r *http.Request) {
	f, ok := s.session(w, r)
	if !ok {
		return
	}
	if !s.parseForm(w, r) {
		return
	}
	s.storeIdentifier(f, r)
	if err := f.SelectMethodString(r.PostForm.Get("method")); err != nil {
		writeMethodError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleRecommend stores the identifier, applies a method change posted
// alongside it and submits.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	f, ok := s.session(w, r)
	if !ok {
		return
	}
	if !s.parseForm(w, r) {
		return
	}
	s.storeIdentifier(f, r)
	if raw := r.PostForm.Get("method"); raw != "" {
		if err := f.SelectMethodString(raw); err != nil {
			writeMethodError(w, err)
			return
		}
	}

	state := f.Submit(r.Context())
	if state.Error != "" {
		logging.Ctx(r.Context()).Debug().
			Str("method", string(state.Method)).
			Str("error_kind", string(state.ErrorKind)).
			Msg("submit finished with error")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return false
	}
	return true
}

// storeIdentifier copies the posted value for the currently bound field. A
// missing key leaves the stored value untouched.
func (s *Server) storeIdentifier(f *form.Form, r *http.Request) {
	field := f.Field()
	if values, ok := r.PostForm[string(field.Name)]; ok && len(values) > 0 {
		f.SetIdentifier(values[0])
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func writeMethodError(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrUnknownMethod) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "could not change method")
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
