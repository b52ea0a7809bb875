package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/metcalfc/folio/internal/viewer"
)

func (s *Server) handleMount(w http.ResponseWriter, r *http.Request) {
	m := &mount{
		id:      uuid.New().String(),
		surface: newHTMLSurface(),
	}
	m.host = viewer.New(viewer.Options{
		Source:      s.source,
		Title:       s.cfg.Book.Title,
		FontSize:    s.cfg.Reader.FontSize,
		TOCVisible:  s.cfg.Reader.TOCVisible,
		ResizeDelay: s.cfg.Reader.ResizeDelay(),
		Library:     s.lib,
		Logger:      s.errs,
	})
	s.mounts.Set(m.id, m, cache.DefaultExpiration)

	ctx, cancel := context.WithTimeout(r.Context(), loadTimeout)
	defer cancel()
	if err := m.host.Initialize(ctx, m.surface); err != nil {
		s.mounts.Delete(m.id)
		s.errs.Printf("mount %s: %v", m.id, err)
		s.render(w, http.StatusInternalServerError, pageData{
			Title: s.cfg.Book.Title,
			L:     s.labels,
			Error: err.Error(),
		})
		return
	}

	s.info.Printf("mounted %s", m.id)
	s.render(w, http.StatusOK, s.pageFor(m))
}

// lookup finds the mount named in the URL and extends its lifetime.
func (s *Server) lookup(r *http.Request) (*mount, bool) {
	id := chi.URLParam(r, "id")
	v, ok := s.mounts.Get(id)
	if !ok {
		return nil, false
	}
	m := v.(*mount)
	s.mounts.Set(id, m, cache.DefaultExpiration)
	return m, true
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(r)
	if !ok {
		// Gone after a reload or expiry.
		startOver(w, r)
		return
	}
	s.render(w, http.StatusOK, s.pageFor(m))
}

// startOver sends a form posted to a gone mount back to a fresh page.
func startOver(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) backToPage(w http.ResponseWriter, r *http.Request, m *mount) {
	http.Redirect(w, r, "/m/"+m.id, http.StatusSeeOther)
}

func (s *Server) handleChapter(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(r)
	if !ok {
		startOver(w, r)
		return
	}
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		http.Error(w, "invalid chapter", http.StatusBadRequest)
		return
	}
	entry := m.host.Entry(n)
	if entry == nil {
		http.NotFound(w, r)
		return
	}
	if err := m.host.NavigateTo(r.Context(), entry); err != nil && !errors.Is(err, viewer.ErrNotReady) {
		s.errs.Printf("mount %s: %v", m.id, err)
	}
	s.backToPage(w, r, m)
}

func (s *Server) handleFont(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(r)
	if !ok {
		startOver(w, r)
		return
	}
	delta := s.step
	if v := r.URL.Query().Get("delta"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid delta", http.StatusBadRequest)
			return
		}
		delta = d
	}
	m.host.SetFontSize(delta)
	s.backToPage(w, r, m)
}

func (s *Server) handleTOC(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(r)
	if !ok {
		startOver(w, r)
		return
	}
	m.host.ToggleTOC()
	s.backToPage(w, r, m)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	width, _ := strconv.Atoi(r.PostFormValue("w"))
	height, _ := strconv.Atoi(r.PostFormValue("h"))
	m.surface.SetSize(width, height)
	m.host.OnResize()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnmount(w http.ResponseWriter, r *http.Request) {
	s.mounts.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
