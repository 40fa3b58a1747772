package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/floe-dev/floectl/pkg/api"
	"github.com/floe-dev/floectl/pkg/config"
	"github.com/floe-dev/floectl/pkg/store"
)

// Opts with all CLI options and commands
type Opts struct {
	Config  string `short:"c" long:"config" env:"FLOECTL_CONFIG" description:"config file"`
	BaseURL string `long:"base-url" env:"FLOE_BASE_URL" description:"Floe service base URL, overrides config"`
	DBPath  string `long:"db" env:"FLOECTL_DB" description:"local state database DSN, overrides config"`

	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`

	LoginCmd   LoginCommand   `command:"login" description:"sign in and store the session token"`
	SignupCmd  SignupCommand  `command:"signup" description:"create a new account"`
	LogoutCmd  LogoutCommand  `command:"logout" description:"drop the stored session token"`
	WhoamiCmd  WhoamiCommand  `command:"whoami" description:"show the signed-in user"`
	FeedCmd    FeedCommand    `command:"feed" description:"browse the record feed"`
	SearchCmd  SearchCommand  `command:"search" description:"search records by type, title or tags"`
	ShowCmd    ShowCommand    `command:"show" description:"show one record with comments and likes"`
	PostCmd    PostCommand    `command:"post" description:"compose and publish a record"`
	DraftsCmd  DraftsCommand  `command:"drafts" description:"list saved drafts"`
	CommentCmd CommentCommand `command:"comment" description:"comment on a record"`
	LikeCmd    LikeCommand    `command:"like" description:"like a record"`
	UnlikeCmd  UnlikeCommand  `command:"unlike" description:"remove a like from a record"`
	DeleteCmd  DeleteCommand  `command:"delete" description:"delete own record"`
	WatchCmd   WatchCommand   `command:"watch" description:"watch the feed for new records"`
	PreviewCmd PreviewCommand `command:"preview" description:"serve the feed as a local web page"`
	VersionCmd VersionCommand `command:"version" description:"show version info"`
}

var revision = "unknown"

var (
	opts    Opts
	mainCtx context.Context
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	mainCtx = ctx

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	parser := flags.NewParser(&opts, flags.Default)
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		setupLog(opts.Debug)
		if opts.NoColor {
			color.NoColor = true
		}
		return command.Execute(args)
	}

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		cancel()
		os.Exit(1)
	}
	cancel()
}

// app bundles the shared pieces every command needs
type app struct {
	cfg    *config.Config
	client *api.Client
	store  *store.Store
}

// newApp loads config, opens the local state database and builds the api
// client with the stored token as its bearer source
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	st, err := store.New(ctx, store.Config{
		DSN:             cfg.State.DSN,
		MaxOpenConns:    cfg.State.MaxOpenConns,
		MaxIdleConns:    cfg.State.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.State.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	client := api.New(cfg.API.BaseURL, api.WithTimeout(cfg.API.Timeout), api.WithTokenSource(st))

	return &app{cfg: cfg, client: client, store: st}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		log.Printf("[WARN] failed to close state database: %v", err)
	}
}

// loadConfig reads the config file when given, falls back to defaults
// otherwise, and applies CLI overrides on top
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if opts.BaseURL != "" {
		cfg.API.BaseURL = opts.BaseURL
	}
	if opts.DBPath != "" {
		cfg.State.DSN = opts.DBPath
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("service base URL is not set, use --base-url or the config file")
	}

	return cfg, nil
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Out(io.Discard), lgr.Err(io.Discard)}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}

// VersionCommand prints build info
type VersionCommand struct{}

// Execute prints version and runtime info
func (VersionCommand) Execute(_ []string) error {
	fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
	return nil
}
