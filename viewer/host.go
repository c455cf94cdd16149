package viewer

import (
	"context"
	"fmt"

	"github.com/lixenwraith/spotlight/install"
	"github.com/lixenwraith/spotlight/render"
	"github.com/lixenwraith/spotlight/spotlight"
)

// Targets lists open tabs for the injector
func (v *Viewer) Targets(context.Context) ([]install.Target, error) {
	out := make([]install.Target, 0, len(v.tabs))
	for _, t := range v.tabs {
		out = append(out, install.Target{ID: t.ID, URL: t.Doc.URL})
	}
	return out, nil
}

// InsertStylesheet applies the configured marker theme to the tab surface
func (v *Viewer) InsertStylesheet(_ context.Context, target install.Target) error {
	t, err := v.tab(target.ID)
	if err != nil {
		return err
	}
	th, err := render.ParseTheme(v.cfg.Display.MarkerFill, v.cfg.Display.MarkerRing)
	if err != nil {
		return err
	}
	t.surface.SetTheme(th)
	return nil
}

// ExecuteScript loads the document and attaches a started controller
// Injecting into a tab that already has one is a no-op
func (v *Viewer) ExecuteScript(ctx context.Context, target install.Target) error {
	t, err := v.tab(target.ID)
	if err != nil {
		return err
	}
	if t.ctrl != nil {
		return nil
	}
	if err := t.Doc.Load(); err != nil {
		return err
	}

	ctrl, err := spotlight.New(spotlight.Options{
		Store:        v.store,
		Surface:      t.surface,
		Frames:       &t.frames,
		Logger:       v.log,
		Metrics:      v.metrics,
		Post:         v.post,
		OnTransition: v.onTransition,
		ID:           t.ID,
	})
	if err != nil {
		return err
	}
	if err := ctrl.Start(ctx); err != nil {
		return err
	}
	t.ctrl = ctrl
	return nil
}

func (v *Viewer) tab(id string) (*Tab, error) {
	for _, t := range v.tabs {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("no tab %q", id)
}
