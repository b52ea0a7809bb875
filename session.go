package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/metcalfc/folio/internal/config"
	"github.com/metcalfc/folio/internal/i18n"
	"github.com/metcalfc/folio/internal/reader"
	"github.com/metcalfc/folio/internal/state"
	"github.com/metcalfc/folio/internal/storage"
	"github.com/metcalfc/folio/internal/viewer"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var errNoBook = errors.New("no book given: pass a path or set book.path in the config")

type cliFlags struct {
	configPath  string
	tocVisible  bool
	fontSize    int
	resume      bool
	fresh       bool
	showVersion bool
	book        string
	set         map[string]bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*cliFlags, error) {
	f := &cliFlags{set: make(map[string]bool)}
	fs.StringVar(&f.configPath, "config", "", "Path to configuration file")
	fs.BoolVar(&f.tocVisible, "toc", true, "Show the table of contents on start")
	fs.IntVar(&f.fontSize, "font", 16, "Initial font size in px")
	fs.BoolVar(&f.resume, "resume", false, "Reopen the last chapter read in this book")
	fs.BoolVar(&f.fresh, "fresh", false, "Forget the saved chapter for this book")
	fs.BoolVar(&f.showVersion, "v", false, "Show version information")
	fs.BoolVar(&f.showVersion, "version", false, "Show version information")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	if fs.NArg() > 0 {
		f.book = fs.Arg(0)
	}
	return f, nil
}

func versionString() string {
	return fmt.Sprintf("folio %s (commit: %s, built: %s)", version, commit, date)
}

// session is one opened book plus the settings the front-ends need.
type session struct {
	cfg    *config.Config
	labels i18n.Labels
	source reader.Source
	hash   string
	store  *state.StateStore
	start  string
	logger *log.Logger
}

func loadSession(ctx context.Context, f *cliFlags, logger *log.Logger) (*session, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.set["toc"] {
		cfg.Reader.TOCVisible = f.tocVisible
	}
	if f.set["font"] {
		cfg.Reader.FontSize = f.fontSize
	}
	if f.set["resume"] {
		cfg.Reader.Resume = f.resume
	}

	var adapter storage.Adapter
	path := f.book
	if path != "" {
		adapter, err = storage.NewLocalAdapter(".")
	} else {
		path = cfg.Book.Path
		adapter, err = storage.NewAdapter(cfg.Storage)
	}
	if err != nil {
		return nil, err
	}
	defer adapter.Close()
	if path == "" {
		return nil, errNoBook
	}

	data, err := storage.Fetch(ctx, adapter, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read book '%s': %w", path, err)
	}

	s := &session{
		cfg:    cfg,
		labels: i18n.Detect(cfg.Reader.Locale),
		source: reader.BytesSource{Name: path, Data: data},
		hash:   state.HashBytes(data),
		logger: logger,
	}

	if cfg.Reader.Resume || f.fresh {
		store, err := state.NewStateStore()
		if err != nil {
			logger.Printf("resume disabled: %v", err)
			return s, nil
		}
		if f.fresh {
			if err := store.Clear(s.hash); err != nil {
				logger.Printf("clear saved chapter: %v", err)
			}
		}
		if cfg.Reader.Resume {
			s.store = store
			s.start = store.Chapter(s.hash)
		}
	}
	return s, nil
}

func (s *session) hostOptions(onChange func()) viewer.Options {
	return viewer.Options{
		Source:      s.source,
		Title:       s.cfg.Book.Title,
		FontSize:    s.cfg.Reader.FontSize,
		TOCVisible:  s.cfg.Reader.TOCVisible,
		ResizeDelay: s.cfg.Reader.ResizeDelay(),
		StartAt:     s.start,
		Logger:      s.logger,
		OnChange:    onChange,
	}
}

// remember saves href as the chapter to resume at. It does nothing unless resume is on.
func (s *session) remember(href string) {
	if s.store == nil {
		return
	}
	if err := s.store.SetChapter(s.hash, href); err != nil {
		s.logger.Printf("save chapter: %v", err)
	}
}
