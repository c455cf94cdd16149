// Package install places the spotlight controller and its stylesheet into
// every qualifying page when the program is installed or updated.
package install

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Reason is why an installation event fired
type Reason string

const (
	ReasonInstall Reason = "install"
	ReasonUpdate  Reason = "update"
)

// Injects reports whether the reason triggers injection into existing pages
func (r Reason) Injects() bool {
	return r == ReasonInstall || r == ReasonUpdate
}

// Target is one open page
type Target struct {
	ID  string
	URL string
}

// Host is the page environment injection runs against
type Host interface {
	Targets(ctx context.Context) ([]Target, error)
	InsertStylesheet(ctx context.Context, t Target) error
	ExecuteScript(ctx context.Context, t Target) error
}

var restrictedPrefixes = []string{
	"chrome://",
	"chrome-extension://",
	"edge://",
	"moz-extension://",
	"spotlight://",
}

// Restricted reports whether url is a browser-internal, own or blank page
func Restricted(url string) bool {
	if url == "about:blank" {
		return true
	}
	for _, p := range restrictedPrefixes {
		if strings.HasPrefix(url, p) {
			return true
		}
	}
	return false
}

// Failure is a target that rejected injection
type Failure struct {
	Target Target
	Err    error
}

// Report summarises one injection pass
type Report struct {
	Injected []Target
	Skipped  []Target
	Failed   []Failure
}

// Injector runs injection passes against a Host
type Injector struct {
	host Host
	log  *slog.Logger
}

// NewInjector creates an injector; a nil logger discards output
func NewInjector(host Host, logger *slog.Logger) *Injector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Injector{host: host, log: logger.With("component", "install")}
}

// OnInstalled injects into existing pages for install and update; other reasons do nothing
func (i *Injector) OnInstalled(ctx context.Context, reason Reason) (Report, error) {
	if !reason.Injects() {
		i.log.Debug("installation event ignored", "reason", string(reason))
		return Report{}, nil
	}
	return i.InjectAll(ctx)
}

// InjectAll inserts the stylesheet and then the script into every unrestricted target
// A failing target is logged and skipped; only a failure to list targets is returned
func (i *Injector) InjectAll(ctx context.Context) (Report, error) {
	var rep Report
	targets, err := i.host.Targets(ctx)
	if err != nil {
		i.log.Error("listing pages for injection failed", "error", err)
		return rep, fmt.Errorf("list targets: %w", err)
	}

	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if Restricted(t.URL) {
			rep.Skipped = append(rep.Skipped, t)
			continue
		}
		if err := i.inject(ctx, t); err != nil {
			i.log.Warn("could not inject into page", "url", t.URL, "error", err)
			rep.Failed = append(rep.Failed, Failure{Target: t, Err: err})
			continue
		}
		i.log.Info("injected into page", "url", t.URL)
		rep.Injected = append(rep.Injected, t)
	}
	return rep, nil
}

func (i *Injector) inject(ctx context.Context, t Target) error {
	if err := i.host.InsertStylesheet(ctx, t); err != nil {
		return fmt.Errorf("insert stylesheet: %w", err)
	}
	if err := i.host.ExecuteScript(ctx, t); err != nil {
		return fmt.Errorf("execute script: %w", err)
	}
	return nil
}
