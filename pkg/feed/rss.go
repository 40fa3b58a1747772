package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/floe-dev/floectl/pkg/domain"
)

// RSS is the root RSS 2.0 element
type RSS struct {
	XMLName xml.Name    `xml:"rss"`
	Version string      `xml:"version,attr"`
	Atom    string      `xml:"xmlns:atom,attr"`
	Channel *RSSChannel `xml:"channel"`
}

// RSSChannel is an RSS channel
type RSSChannel struct {
	XMLName       xml.Name   `xml:"channel"`
	Title         string     `xml:"title"`
	Link          string     `xml:"link"`
	Description   string     `xml:"description"`
	AtomLink      *AtomLink  `xml:"http://www.w3.org/2005/Atom link"`
	LastBuildDate string     `xml:"lastBuildDate"`
	Items         []*RSSItem `xml:"item"`
}

// AtomLink is an Atom link element within RSS
type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// RSSItem is an item in an RSS feed
type RSSItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        string   `xml:"guid"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	PubDate     string   `xml:"pubDate"`
	Categories  []string `xml:"category"`
}

// Generator creates an RSS 2.0 rendition of fetched record pages
type Generator struct {
	baseURL string
}

// NewGenerator creates a generator; baseURL is the backend the record
// links point at
func NewGenerator(baseURL string) *Generator {
	return &Generator{baseURL: strings.TrimRight(baseURL, "/")}
}

// GenerateRSS renders the cached pages as an RSS feed, records in fetch
// order
func (g *Generator) GenerateRSS(pages []domain.RecordPage, selfLink string) (string, error) {
	var rssItems []*RSSItem
	for _, page := range pages {
		for _, rec := range page.Content {
			rssItems = append(rssItems, g.convertRecord(rec))
		}
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         "Floe records",
			Link:          g.baseURL + "/",
			Description:   "Latest records from the Floe feed",
			AtomLink:      &AtomLink{Href: selfLink, Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: time.Now().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}
	return xml.Header + string(output), nil
}

// convertRecord maps a record summary to an RSS item
func (g *Generator) convertRecord(rec domain.RecordSummary) *RSSItem {
	desc := fmt.Sprintf("%s by %s", rec.RecordType, rec.Nickname)
	if len(rec.TagNames) > 0 {
		desc += "\nTags: " + strings.Join(rec.TagNames, ", ")
	}
	desc += fmt.Sprintf("\n%d likes, %d comments", rec.LikeCount, rec.CommentCount)

	return &RSSItem{
		Title:       rec.Title,
		Link:        fmt.Sprintf("%s/records/%d", g.baseURL, rec.RecordID),
		GUID:        fmt.Sprintf("floe-record-%d", rec.RecordID),
		Description: desc,
		Author:      rec.Nickname,
		PubDate:     rec.CreatedAt.Format(time.RFC1123Z),
		Categories:  rec.TagNames,
	}
}
