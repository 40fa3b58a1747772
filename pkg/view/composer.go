// Package view composes fetched feed pages into an ordered list of
// record items and renders them for the terminal. Composition is pure:
// the same page cache and mode always produce the same list, and
// switching the mode never touches the cache.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/floe-dev/floectl/pkg/domain"
)

// Mode selects the feed rendering style
type Mode string

const (
	ModeCard Mode = "card"
	ModeList Mode = "list"
)

// ParseMode validates a view mode string, defaulting to card
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeCard, "":
		return ModeCard, nil
	case ModeList:
		return ModeList, nil
	}
	return "", fmt.Errorf("unknown view mode %q, want card or list", s)
}

// Item is one composed feed entry. Key is stable across mode toggles and
// page appends so an already rendered item keeps its identity.
type Item struct {
	Key    string
	Record domain.RecordSummary
}

// Compose flattens the page cache into render order: pages in fetch
// order, records in server order within each page, deduplicated by
// record ID. Missing or empty pages contribute nothing.
func Compose(pages []domain.RecordPage) []Item {
	seen := make(map[int64]struct{})
	var items []Item
	for _, page := range pages {
		for _, rec := range page.Content {
			if _, ok := seen[rec.RecordID]; ok {
				continue
			}
			seen[rec.RecordID] = struct{}{}
			items = append(items, Item{Key: fmt.Sprintf("record-%d", rec.RecordID), Record: rec})
		}
	}
	return items
}

// Renderer writes composed items as terminal text
type Renderer struct {
	mode    Mode
	noColor bool
}

// NewRenderer creates a renderer for the given mode
func NewRenderer(mode Mode, noColor bool) *Renderer {
	return &Renderer{mode: mode, noColor: noColor}
}

// Render produces the full feed rendition. An empty composition renders
// an empty placeholder, not an error state.
func (r *Renderer) Render(items []Item) string {
	if len(items) == 0 {
		return "no records\n"
	}

	b := &strings.Builder{}
	for _, item := range items {
		switch r.mode {
		case ModeList:
			r.renderListLine(b, item.Record)
		default:
			r.renderCard(b, item.Record)
		}
	}
	return b.String()
}

// renderListLine writes the compact one-line form
func (r *Renderer) renderListLine(b *strings.Builder, rec domain.RecordSummary) {
	fmt.Fprintf(b, "%6d  %-7s %s  %s\n",
		rec.RecordID, rec.RecordType, r.colored(color.FgHiWhite, rec.Title), r.meta(rec))
}

// renderCard writes the multi-line card form
func (r *Renderer) renderCard(b *strings.Builder, rec domain.RecordSummary) {
	fmt.Fprintf(b, "%s  #%d\n", r.colored(color.FgHiWhite, rec.Title), rec.RecordID)
	fmt.Fprintf(b, "  %s by %s", rec.RecordType, rec.Nickname)
	if !rec.CreatedAt.IsZero() {
		fmt.Fprintf(b, " on %s", rec.CreatedAt.Format(time.DateOnly))
	}
	b.WriteString("\n")
	if len(rec.TagNames) > 0 {
		fmt.Fprintf(b, "  %s\n", r.colored(color.FgCyan, strings.Join(rec.TagNames, " ")))
	}
	fmt.Fprintf(b, "  %s\n\n", r.meta(rec))
}

// meta formats the like/comment counters
func (r *Renderer) meta(rec domain.RecordSummary) string {
	return r.colored(color.FgYellow, fmt.Sprintf("♥%d 💬%d", rec.LikeCount, rec.CommentCount))
}

func (r *Renderer) colored(attr color.Attribute, s string) string {
	if r.noColor {
		return s
	}
	return color.New(attr).Sprint(s)
}
