package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/floe-dev/floectl/pkg/feed"
	"github.com/floe-dev/floectl/pkg/view"
)

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":   "ok",
		"version":  s.version,
		"time":     time.Now().UTC(),
		"pages":    len(s.pager.Pages()),
		"records":  s.pager.Len(),
		"has_next": s.pager.HasNext(),
		"fetching": s.pager.IsFetchingNext(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// recordsHandler returns the composed feed as JSON
func (s *Server) recordsHandler(w http.ResponseWriter, r *http.Request) {
	items := view.Compose(s.pager.Pages())
	renderJSON(w, r, http.StatusOK, map[string]interface{}{
		"records":  items,
		"has_next": s.pager.HasNext(),
	})
}

// cacheFull reports whether the pager already holds as many pages as the
// preview is configured to keep
func (s *Server) cacheFull() bool {
	return s.maxPages > 0 && len(s.pager.Pages()) >= s.maxPages
}

// nextPageHandler fetches the next feed page on demand
func (s *Server) nextPageHandler(w http.ResponseWriter, r *http.Request) {
	if s.cacheFull() {
		renderJSON(w, r, http.StatusOK, map[string]interface{}{
			"fetched":    false,
			"cache_full": true,
			"pages":      len(s.pager.Pages()),
			"has_next":   s.pager.HasNext(),
		})
		return
	}

	fetched, err := s.pager.FetchNext(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to fetch next page: %v", err)
		renderError(w, r, err, http.StatusBadGateway)
		return
	}

	renderJSON(w, r, http.StatusOK, map[string]interface{}{
		"fetched":  fetched,
		"pages":    len(s.pager.Pages()),
		"has_next": s.pager.HasNext(),
	})
}

// resetHandler rewinds the feed to its initial state
func (s *Server) resetHandler(w http.ResponseWriter, r *http.Request) {
	s.pager.Reset()
	s.lock.Lock()
	s.trigger = feed.NewTrigger(s.pager, feed.DefaultThreshold)
	s.lock.Unlock()
	renderJSON(w, r, http.StatusOK, map[string]string{"status": "reset"})
}

// observeRequest reports the visible window over the composed record list
type observeRequest struct {
	Offset int `json:"offset"`
	Height int `json:"height"`
}

// observeHandler feeds a reported scroll position into the trigger. The page
// script posts the visible window after every scroll; crossing the tail
// threshold starts the next page fetch.
func (s *Server) observeHandler(w http.ResponseWriter, r *http.Request) {
	var req observeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid observe request"), http.StatusBadRequest)
		return
	}

	s.lock.Lock()
	trigger := s.trigger
	s.lock.Unlock()

	fired := false
	if !s.cacheFull() {
		total := len(view.Compose(s.pager.Pages()))
		fired = trigger.Observe(r.Context(), feed.Viewport{Offset: req.Offset, Height: req.Height}, total)
	}

	renderJSON(w, r, http.StatusOK, map[string]interface{}{
		"fired":    fired,
		"pages":    len(s.pager.Pages()),
		"has_next": s.pager.HasNext(),
	})
}
