package server

import (
	"log"
	"net/http"

	"github.com/floe-dev/floectl/pkg/view"
)

// feedPageData is passed to the feed page template
type feedPageData struct {
	Items   []view.Item
	Mode    view.Mode
	HasNext bool
	Version string
}

// feedPageHandler renders the cached feed as an HTML page. The view mode
// defaults to the configured one and can be switched with ?mode=card|list.
func (s *Server) feedPageHandler(w http.ResponseWriter, r *http.Request) {
	mode := s.mode
	if m := r.URL.Query().Get("mode"); m != "" {
		parsed, err := view.ParseMode(m)
		if err != nil {
			renderError(w, r, err, http.StatusBadRequest)
			return
		}
		mode = parsed
	}

	// load the first page lazily so opening the browser works before
	// any api call populated the cache
	if s.pager.Len() == 0 && s.pager.HasNext() {
		if _, err := s.pager.FetchNext(r.Context()); err != nil {
			log.Printf("[ERROR] failed to load first page: %v", err)
			http.Error(w, "Failed to load feed", http.StatusBadGateway)
			return
		}
	}

	data := feedPageData{
		Items:   view.Compose(s.pager.Pages()),
		Mode:    mode,
		HasNext: s.pager.HasNext(),
		Version: s.version,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "feed.html", data); err != nil {
		log.Printf("[ERROR] failed to render feed page: %v", err)
	}
}
