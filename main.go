//go:build !gui

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Folio - Terminal E-book Reader\n\n")
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  folio [options] [book.epub]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  folio book.epub                 Read a book\n")
	fmt.Fprintf(os.Stderr, "  folio -font 20 -toc=false b.epub Start larger, contents hidden\n")
	fmt.Fprintf(os.Stderr, "  folio -resume book.epub         Reopen the last chapter read\n")
	fmt.Fprintf(os.Stderr, "  folio -config folio.yaml        Read the book named in the config\n")
	fmt.Fprintf(os.Stderr, "\nControls:\n")
	fmt.Fprintf(os.Stderr, "  t        Show/hide contents\n")
	fmt.Fprintf(os.Stderr, "  +/-      Increase/decrease font size\n")
	fmt.Fprintf(os.Stderr, "  ↑/↓      Move in contents, or scroll\n")
	fmt.Fprintf(os.Stderr, "  ENTER    Open chapter\n")
	fmt.Fprintf(os.Stderr, "  TAB      Switch between contents and text\n")
	fmt.Fprintf(os.Stderr, "  Q        Quit\n")
}

func main() {
	flag.Usage = usage
	f, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if f.showVersion {
		fmt.Println(versionString())
		os.Exit(0)
	}

	// The alt screen owns the terminal, so logs go to a file or nowhere.
	logger := log.New(io.Discard, "", 0)
	if os.Getenv("FOLIO_DEBUG") != "" {
		lf, err := tea.LogToFile("folio.log", "folio")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer lf.Close()
		logger = log.Default()
	}

	sess, err := loadSession(context.Background(), f, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errNoBook) {
			fmt.Fprintln(os.Stderr, "Try: folio -h")
		}
		os.Exit(1)
	}

	m := newModel(sess)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	m.host.Teardown()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
