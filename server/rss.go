package server

import (
	"log"
	"net/http"

	"github.com/floe-dev/floectl/pkg/feed"
)

// rssHandler exports the cached feed pages as RSS
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	baseURL, _, _ := s.config.GetAPIConfig()

	generator := feed.NewGenerator(baseURL)

	selfLink := "http://" + r.Host + "/rss"
	rss, err := generator.GenerateRSS(s.pager.Pages(), selfLink)
	if err != nil {
		log.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		log.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}
