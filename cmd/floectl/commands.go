package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/floe-dev/floectl/pkg/api"
	"github.com/floe-dev/floectl/pkg/domain"
	"github.com/floe-dev/floectl/pkg/draft"
	"github.com/floe-dev/floectl/pkg/feed"
	"github.com/floe-dev/floectl/pkg/store"
	"github.com/floe-dev/floectl/pkg/suggest"
	"github.com/floe-dev/floectl/pkg/view"
	"github.com/floe-dev/floectl/pkg/watch"
	"github.com/floe-dev/floectl/server"
)

// needsLogin reports whether err means the user has to sign in first,
// either no stored token or the backend rejecting the current one
func needsLogin(err error) bool {
	return errors.Is(err, store.ErrNotSignedIn) || api.IsAuthError(err)
}

// LoginCommand signs in and stores the session token locally
type LoginCommand struct {
	Email    string `short:"e" long:"email" env:"FLOE_EMAIL" required:"true" description:"account email"`
	Password string `short:"p" long:"password" env:"FLOE_PASSWORD" required:"true" description:"account password"`
}

// Execute runs the login command
func (cmd LoginCommand) Execute(_ []string) error {
	a, err := newApp(mainCtx)
	if err != nil {
		return err
	}
	defer a.close()

	token, err := a.client.SignIn(mainCtx, api.SignInRequest{Email: cmd.Email, Password: cmd.Password})
	if err != nil {
		return fmt.Errorf("sign in failed: %w", err)
	}

	if err := a.store.SaveToken(mainCtx, *token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	if token.ExpiresAt.IsZero() {
		fmt.Println("signed in")
		return nil
	}
	fmt.Printf("signed in, session valid until %s\n", token.ExpiresAt.Format(time.RFC1123))
	return nil
}

// SignupCommand creates a new account
type SignupCommand struct {
	Email    string `short:"e" long:"email" required:"true" description:"account email"`
	Password string `short:"p" long:"password" required:"true" description:"account password"`
	Nickname string `short:"n" long:"nickname" required:"true" description:"display name"`
}

// Execute runs the signup command
func (cmd SignupCommand) Execute(_ []string) error {
	a, err := newApp(mainCtx)
	if err != nil {
		return err
	}
	defer a.close()

	req := api.SignUpRequest{Email: cmd.Email, Password: cmd.Password, Nickname: cmd.Nickname}
	if err := a.client.SignUp(mainCtx, req); err != nil {
		return fmt.Errorf("sign up failed: %w", err)
	}

	fmt.Printf("account created for %s, sign in with: floectl login\n", cmd.Nickname)
	return nil
}

// LogoutCommand drops the stored session token
type LogoutCommand struct{}

// Execute runs the logout command
func (LogoutCommand) Execute(_ []string) error {
	a, err := newApp(mainCtx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.store.ClearToken(mainCtx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	fmt.Println("signed out")
	return nil
}

// WhoamiCommand shows the signed-in user's profile
type WhoamiCommand struct{}

// Execute runs the whoami command
func (WhoamiCommand) Execute(_ []string) error {
	a, err := newApp(mainCtx)
	if err != nil {
		return err
	}
	defer a.close()

	user, err := a.client.CurrentUser(mainCtx)
	if err != nil {
		if needsLogin(err) {
			return fmt.Errorf("not signed in, run: floectl login")
		}
		return err
	}

	fmt.Printf("%s <%s>\n", user.Nickname, user.Email)
	return nil
}

// FeedCommand browses the record feed page by page
type FeedCommand struct {
	Pages int    `long:"pages" default:"1" description:"number of pages to fetch"`
	Size  int    `long:"size" description:"page size, overrides config"`
	Mode  string `long:"mode" choice:"card" choice:"list" default:"card" description:"render mode"`
}

// Execute runs the feed command
func (cmd FeedCommand) Execute(_ []string) error {
	a, err := newApp(mainCtx)
	if err != nil {
		return err
	}
	defer a.close()

	size := cmd.Size
	if size == 0 {
		size = a.cfg.API.PageSize
	}

	pager := feed.NewPager(feed.SourceFunc(a.client.ListRecords), size)
	return renderFeed(pager, cmd.Pages, cmd.Mode)
}

// SearchCommand searches records by type, title or tags
type SearchCommand struct {
	Type  string   `long:"type" choice:"FLOE" choice:"ISSUE" description:"record type filter"`
	Title string   `long:"title" description:"title substring filter"`
	Tags  []string `long:"tag" description:"tag filter, repeatable"`
	Pages int      `long:"pages" default:"1" description:"number of pages to fetch"`
	Size  int      `long:"size" description:"page size, overrides config"`
	Mode  string   `long:"mode" choice:"card" choice:"list" default:"card" description:"render mode"`
}

// Execute runs the search command
func (cmd SearchCommand) Execute(_ []string) error {
	a, err := newApp(mainCtx)
	if err != nil {
		return err
	}
	defer a.close()

	size := cmd.Size
	if size == 0 {
		size = a.cfg.API.PageSize
	}

	filter := api.SearchFilter{
		RecordType: domain.RecordType(cmd.Type),
		Title:      cmd.Title,
		TagNames:   cmd.Tags,
	}

	source := feed.SourceFunc(func(ctx context.Context, page, pageSize int) (*domain.RecordPage, error) {
		return a.client.SearchRecords(ctx, filter, page, pageSize)
	})

	pager := feed.NewPager(source, size)
	return renderFeed(pager, cmd.Pages, cmd.Mode)
}

// renderFeed fetches up to pages pages and prints the composed list
func renderFeed(pager *feed.Pager, pages int, mode string) error {
	for i := 0; i < pages && pager.HasNext(); i++ {
		if _, err := pager.FetchNext(mainCtx); err != nil {
			return fmt.Errorf("fetch feed page: %w", err)
		}
	}

	parsed, err := view.ParseMode(mode)
	if err != nil {
		return err
	}

	renderer := view.NewRenderer(parsed, opts.NoColor)
	fmt.Print(renderer.Render(view.Compose(pager.Pages())))

	if pager.HasNext() {
		fmt.Println("... more records available, use --pages to fetch further")
	}
	return nil
}

// ShowCommand shows one record with its comments and like count
type ShowCommand struct {
	Args struct {
		ID int64 `positional-arg-name:"record-id" required:"true" description:"record id"`
	} `positional-args:"true" required:"true"`
	Comments int `long:"comments" default:"10" description:"number of comments to show"`
}

// Execute runs the show command, fetching record, comments and likes in parallel
func (cmd ShowCommand) Execute(_ []string) error {
	a, err := newApp(mainCtx)
	if err != nil {
		return err
	}
	defer a.close()

	var (
		rec      *domain.Record
		comments *domain.CommentPage
		likes    *api.LikeCountResponse
	)

	g, ctx := errgroup.WithContext(mainCtx)
	g.Go(func() error {
		var e error
		rec, e = a.client.GetRecord(ctx, cmd.Args.ID)
		return e
	})
	g.Go(func() error {
		var e error
		comments, e = a.client.ListComments(ctx, cmd.Args.ID, 0, cmd.Comments)
		return e
	})
	g.Go(func() error {
		var e error
		likes, e = a.client.LikeCount(ctx, cmd.Args.ID)
		return e
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("fetch record %d: %w", cmd.Args.ID, err)
	}

	fmt.Printf("%s\n", rec.Title)
	fmt.Printf("by %s | %s | %d likes | %d comments\n", rec.Nickname, rec.RecordType, likes.LikeCount, rec.CommentCount)
	if len(rec.TagNames) > 0 {
		fmt.Printf("tags: %v\n", rec.TagNames)
	}
	fmt.Printf("\n%s\n", view.HTMLToText(rec.Content))

	if len(comments.Content) > 0 {
		fmt.Println("comments:")
		for _, c := range comments.Content {
			fmt.Printf("  [%d] %s: %s\n", c.CommentID, c.Nickname, c.Content)
			if c.ReplyCount > 0 {
				fmt.Printf("      %d replies\n", c.ReplyCount)
			}
		}
	}
	return nil
}

// PostCommand composes and publishes a record, with optional draft support
type PostCommand struct {
	Title    string   `short:"t" long:"title" description:"record title"`
	Type     string   `long:"type" choice:"FLOE" choice:"ISSUE" default:"FLOE" description:"record type"`
	File     string   `short:"f" long:"file" description:"markdown file with the content"`
	Tags     []string `long:"tag" description:"tag to attach, repeatable"`
	Images   []string `long:"image" description:"image file to attach, repeatable"`
	Suggest  bool     `long:"suggest-tags" description:"ask the configured LLM for tag suggestions"`
	DraftID  string   `long:"draft" description:"draft id to continue working on"`
	SaveOnly bool     `long:"save-only" description:"save as a draft instead of publishing"`
}

// Execute runs the post command
func (cmd PostCommand) Execute(_ []string) error {
	a, err := newApp(mainCtx)
	if err != nil {
		return err
	}
	defer a.close()

	d, err := cmd.buildDraft(a)
	if err != nil {
		return err
	}

	if cmd.Suggest {
		if !a.cfg.Suggest.Enabled {
			return fmt.Errorf("tag suggestions are not enabled in the config")
		}
		suggester := suggest.NewSuggester(a.cfg.GetSuggestConfig())
		tags, err := suggester.Suggest(mainCtx, d.Title, view.HTMLToText(d.Content), draft.DefaultVocabulary)
		if err != nil {
			return fmt.Errorf("suggest tags: %w", err)
		}
		for _, tag := range tags {
			if d.AddTag(tag) {
				fmt.Printf("suggested tag: %s\n", tag)
			}
		}
	}

	if cmd.SaveOnly {
		id, err := a.store.SaveDraft(mainCtx, cmd.DraftID, d)
		if err != nil {
			return fmt.Errorf("save draft: %w", err)
		}
		fmt.Printf("draft saved, continue with: floectl post --draft %s\n", id)
		return nil
	}

	rec, err := d.Submit(mainCtx, a.client, nil)
	if err != nil {
		if needsLogin(err) {
			return fmt.Errorf("not signed in, run: floectl login")
		}
		return fmt.Errorf("publish record: %w", err)
	}

	// published drafts are done, drop the stored copy
	if cmd.DraftID != "" {
		if err := a.store.DeleteDraft(mainCtx, cmd.DraftID); err != nil {
			log.Printf("[WARN] failed to delete published draft %s: %v", cmd.DraftID, err)
		}
	}

	fmt.Printf("published record %d: %s\n", rec.RecordID, rec.Title)
	return nil
}

// buildDraft loads the saved draft or starts a new one and applies the flags
func (cmd PostCommand) buildDraft(a *app) (*draft.Draft, error) {
	var d *draft.Draft
	if cmd.DraftID != "" {
		loaded, err := a.store.LoadDraft(mainCtx, cmd.DraftID)
		if err != nil {
			return nil, fmt.Errorf("load draft %s: %w", cmd.DraftID, err)
		}
		d = loaded
	} else {
		recordType, err := domain.ParseRecordType(cmd.Type)
		if err != nil {
			return nil, err
		}
		d = draft.New(recordType)
	}

	if cmd.Title != "" {
		d.Title = cmd.Title
	}
	if cmd.File != "" {
		src, err := os.ReadFile(cmd.File) //nolint:gosec // file path comes from CLI flag
		if err != nil {
			return nil, fmt.Errorf("read content file: %w", err)
		}
		if err := d.SetMarkdown(string(src)); err != nil {
			return nil, fmt.Errorf("convert markdown: %w", err)
		}
	}
	for _, tag := range cmd.Tags {
		d.AddTag(tag)
	}
	for _, img := range cmd.Images {
		if err := d.AddImage(img); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// DraftsCommand lists saved drafts
type DraftsCommand struct{}

// Execute runs the drafts command
func (DraftsCommand) Execute(_ []string) error {
	a, err := newApp(mainCtx)
	if err != nil {
		return err
	}
	defer a.close()

	drafts, err := a.store.ListDrafts(mainCtx)
	if err != nil {
		return fmt.Errorf("list drafts: %w", err)
	}

	if len(drafts) == 0 {
		fmt.Println("no drafts")
		return nil
	}
	for _, d := range drafts {
		title := d.Draft.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s  %s  %s\n", d.ID, d.UpdatedAt.Format("2006-01-02 15:04"), title)
	}
	return nil
}

// CommentCommand posts a comment or a reply on a record
type CommentCommand struct {
	Args struct {
		ID int64 `positional-arg-name:"record-id" required:"true" description:"record id"`
	} `positional-args:"true" required:"true"`
	Message string `short:"m" long:"message" required:"true" description:"comment text"`
	Parent  int64  `long:"parent" description:"parent comment id for replies"`
}

// Execute runs the comment command
func (cmd CommentCommand) Execute(_ []string) error {
	a, err := newApp(mainCtx)
	if err != nil {
		return err
	}
	defer a.close()

	req := api.CommentRequest{RecordID: cmd.Args.ID, ParentID: cmd.Parent, Content: cmd.Message}
	comment, err := a.client.PostComment(mainCtx, req)
	if err != nil {
		if needsLogin(err) {
			return fmt.Errorf("not signed in, run: floectl login")
		}
		return fmt.Errorf("post comment: %w", err)
	}

	fmt.Printf("comment %d posted on record %d\n", comment.CommentID, cmd.Args.ID)
	return nil
}

// LikeCommand likes a record
type LikeCommand struct {
	Args struct {
		ID int64 `positional-arg-name:"record-id" required:"true" description:"record id"`
	} `positional-args:"true" required:"true"`
}

// Execute runs the like command
func (cmd LikeCommand) Execute(_ []string) error {
	a, err := newApp(mainCtx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.client.Like(mainCtx, cmd.Args.ID); err != nil {
		if needsLogin(err) {
			return fmt.Errorf("not signed in, run: floectl login")
		}
		return fmt.Errorf("like record: %w", err)
	}

	count, err := a.client.LikeCount(mainCtx, cmd.Args.ID)
	if err != nil {
		fmt.Printf("liked record %d\n", cmd.Args.ID)
		return nil //nolint:nilerr // like went through, count is informational
	}
	fmt.Printf("liked record %d, %d likes total\n", cmd.Args.ID, count.LikeCount)
	return nil
}

// UnlikeCommand removes a like from a record
type UnlikeCommand struct {
	Args struct {
		ID int64 `positional-arg-name:"record-id" required:"true" description:"record id"`
	} `positional-args:"true" required:"true"`
}

// Execute runs the unlike command
func (cmd UnlikeCommand) Execute(_ []string) error {
	a, err := newApp(mainCtx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.client.Unlike(mainCtx, cmd.Args.ID); err != nil {
		if needsLogin(err) {
			return fmt.Errorf("not signed in, run: floectl login")
		}
		return fmt.Errorf("unlike record: %w", err)
	}
	fmt.Printf("removed like from record %d\n", cmd.Args.ID)
	return nil
}

// DeleteCommand deletes own record
type DeleteCommand struct {
	Args struct {
		ID int64 `positional-arg-name:"record-id" required:"true" description:"record id"`
	} `positional-args:"true" required:"true"`
}

// Execute runs the delete command
func (cmd DeleteCommand) Execute(_ []string) error {
	a, err := newApp(mainCtx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.client.DeleteRecord(mainCtx, cmd.Args.ID); err != nil {
		if needsLogin(err) {
			return fmt.Errorf("not signed in, run: floectl login")
		}
		return fmt.Errorf("delete record: %w", err)
	}
	fmt.Printf("deleted record %d\n", cmd.Args.ID)
	return nil
}

// WatchCommand polls the feed and prints new records as they appear
type WatchCommand struct {
	Interval time.Duration `long:"interval" description:"poll interval, overrides config"`
	Mode     string        `long:"mode" choice:"card" choice:"list" default:"list" description:"render mode"`
}

// Execute runs the watch command until interrupted
func (cmd WatchCommand) Execute(_ []string) error {
	a, err := newApp(mainCtx)
	if err != nil {
		return err
	}
	defer a.close()

	parsed, err := view.ParseMode(cmd.Mode)
	if err != nil {
		return err
	}
	renderer := view.NewRenderer(parsed, opts.NoColor)

	notifier := watch.NotifierFunc(func(records []domain.RecordSummary) {
		items := make([]view.Item, 0, len(records))
		for _, r := range records {
			items = append(items, view.Item{Key: fmt.Sprintf("record-%d", r.RecordID), Record: r})
		}
		fmt.Print(renderer.Render(items))
	})

	interval := cmd.Interval
	if interval == 0 {
		interval = a.cfg.Watch.Interval
	}

	watcher := watch.NewWatcher(a.client, notifier, watch.Config{
		Interval: interval,
		PageSize: a.cfg.Watch.PageSize,
	})

	watcher.Start(mainCtx)
	<-mainCtx.Done()
	watcher.Stop()
	return nil
}

// PreviewCommand serves the feed as a local web page
type PreviewCommand struct {
	Listen string `short:"l" long:"listen" description:"listen address, overrides config"`
	Mode   string `long:"mode" choice:"card" choice:"list" description:"default view mode, overrides config"`
}

// Execute runs the preview server until interrupted
func (cmd PreviewCommand) Execute(_ []string) error {
	a, err := newApp(mainCtx)
	if err != nil {
		return err
	}
	defer a.close()

	if cmd.Listen != "" {
		a.cfg.Preview.Listen = cmd.Listen
	}
	if cmd.Mode != "" {
		a.cfg.Preview.Mode = cmd.Mode
	}

	mode, err := view.ParseMode(a.cfg.Preview.Mode)
	if err != nil {
		return err
	}

	pager := feed.NewPager(feed.SourceFunc(a.client.ListRecords), a.cfg.API.PageSize)
	srv := server.New(a.cfg, pager, mode, revision, opts.Debug)

	log.Printf("[INFO] starting floectl preview version %s", revision)
	if err := srv.Run(mainCtx); err != nil {
		return fmt.Errorf("preview server failed: %w", err)
	}
	log.Print("[INFO] shutdown complete")
	return nil
}
