package viewer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// SettingsURL is the viewer's own settings page
	SettingsURL = "spotlight://settings"
	blankURL    = "about:blank"

	maxDocumentBytes = 1 << 20
)

// Document is the content of one tab
type Document struct {
	URL   string
	Title string
	Lines []string
	// path is the file backing the document; empty for built-in pages
	path   string
	loaded bool
}

// NewDocument resolves a command-line argument to a page URL without reading it
func NewDocument(arg string) Document {
	arg = strings.TrimSpace(arg)
	switch {
	case arg == "" || arg == blankURL:
		return Document{URL: blankURL, Title: "blank", loaded: true}
	case arg == SettingsURL:
		return Document{URL: SettingsURL, Title: "settings", loaded: true}
	case strings.Contains(arg, "://"):
		u, err := url.Parse(arg)
		if err == nil && u.Scheme == "file" {
			return Document{URL: arg, Title: filepath.Base(u.Path), path: u.Path}
		}
		return Document{URL: arg, Title: arg}
	}

	abs, err := filepath.Abs(arg)
	if err != nil {
		abs = arg
	}
	return Document{
		URL:   (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(),
		Title: filepath.Base(abs),
		path:  abs,
	}
}

// Load reads the backing file once; remote URLs have no loader and fail
func (d *Document) Load() error {
	if d.loaded {
		return nil
	}
	if d.path == "" {
		return fmt.Errorf("no loader for %q", d.URL)
	}
	f, err := os.Open(d.path)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(io.LimitReader(f, maxDocumentBytes))
	sc.Buffer(make([]byte, 64<<10), maxDocumentBytes)
	for sc.Scan() {
		lines = append(lines, strings.ReplaceAll(sc.Text(), "\t", "    "))
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read document: %w", err)
	}
	d.Lines = lines
	d.loaded = true
	return nil
}

// Loaded reports whether the content is available
func (d *Document) Loaded() bool {
	return d.loaded
}

// helpURL names the built-in help page; it is an ordinary page and receives the spotlight
const helpURL = "data:text/plain,spotlight-help"

// HelpDocument is opened when no arguments are given
func HelpDocument() Document {
	return Document{
		URL:   helpURL,
		Title: "help",
		Lines: []string{
			"spotlight",
			"",
			"Hold the configured modifier pair (default ctrl+shift) and move the mouse:",
			"everything outside a circle around the pointer is dimmed.",
			"",
			"Terminals report modifiers together with mouse motion, so keep the mouse",
			"moving while the keys are held. Releasing them turns the spotlight off",
			"at the next mouse or key event.",
			"",
			"Keys",
			"  + / -     spotlight radius",
			"  ] / [     dim opacity",
			"  } / {     gradient size",
			"  c         cycle cursor style (normal, highlight, none)",
			"  e         toggle enabled",
			"  R         reset all settings to defaults",
			"  Tab       next tab",
			"  q / Esc   quit",
			"",
			"Settings are shared by every tab and every running viewer.",
		},
		loaded: true,
	}
}
