package viewer

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/spotlight/install"
	"github.com/lixenwraith/spotlight/render"
	"github.com/lixenwraith/spotlight/settings"
)

func (v *Viewer) draw() {
	t := v.Current()
	if t == nil {
		return
	}
	start := v.now()
	v.buf.Clear()
	v.drawPage(t)
	t.surface.Compose(v.buf)
	v.drawStatus(t)

	v.buf.Flush(v.screen)
	t.surface.PlaceCursor(v.screen)
	v.screen.Show()
	v.statRedraws.Add(1)
	v.statDrawMs.Set(float64(v.now().Sub(start).Microseconds()) / 1000)
}

func (v *Viewer) pageLines(t *Tab) []string {
	if t.Doc.URL == SettingsURL {
		return settingsPage(v.settings, v.store)
	}
	if !t.Doc.Loaded() {
		return []string{"", "  this page could not be loaded: " + t.Doc.URL}
	}
	return t.Doc.Lines
}

func (v *Viewer) drawPage(t *Tab) {
	lines := v.pageLines(t)
	h := v.viewHeight()
	for row := 0; row < h; row++ {
		i := t.scroll + row
		if i >= len(lines) {
			break
		}
		fg := render.RGBText
		if i == 0 && t.Doc.URL != SettingsURL {
			fg = render.RGBHeading
		}
		v.buf.Text(0, row, lines[i], fg, render.RGBBackground)
	}
}

// settingsPage renders the current record the way the editing keys change it
func settingsPage(s settings.Settings, store settings.Store) []string {
	lines := []string{
		"Spotlight settings",
		"",
		fmt.Sprintf("  %-16s %v px        (+/-)", "radius", s.SpotlightRadius),
		fmt.Sprintf("  %-16s %.0f %%        ([/])", "dim opacity", s.DimOpacity*100),
		fmt.Sprintf("  %-16s %v px        ({/})", "gradient", s.GradientSize),
		fmt.Sprintf("  %-16s %s + %s", "activation", s.Hotkey1, s.Hotkey2),
		fmt.Sprintf("  %-16s %s          (c)", "cursor", s.CursorStyle),
		fmt.Sprintf("  %-16s %t          (e)", "enabled", s.IsEnabled),
		"",
		"  R resets every setting to its default.",
		"  Hotkeys are changed with: spotlight settings set hotkey1 alt",
	}
	if fs, ok := store.(*settings.FileStore); ok {
		lines = append(lines, "", "  stored in "+fs.Path())
	}
	return lines
}

func (v *Viewer) drawStatus(t *Tab) {
	w, h := v.buf.Size()
	if h == 0 {
		return
	}
	row := h - 1
	v.buf.Fill(0, row, w, render.RGBStatusBg)

	state := "page"
	if c := t.ctrl; c != nil {
		state = strings.ToUpper(c.State().String())
	} else if install.Restricted(t.Doc.URL) {
		state = "restricted"
	}
	s := v.settings
	left := fmt.Sprintf(" [%d/%d] %s | %s | r=%v dim=%.0f%% g=%v | %s+%s | %s ",
		v.current+1, len(v.tabs), t.Doc.Title, state,
		s.SpotlightRadius, s.DimOpacity*100, s.GradientSize,
		s.Hotkey1, s.Hotkey2, s.CursorStyle)
	x := v.buf.Text(0, row, left, render.RGBStatusFg, render.RGBStatusBg)

	right := v.metrics.Line("spotlight.activations", "spotlight.frames", "spotlight.coalesced")
	if v.flash != "" && v.now().Before(v.flashUntil) {
		right = v.flash
	}
	if start := w - len(right) - 1; start > x {
		v.buf.Text(start, row, right, render.RGBStatusFg, render.RGBStatusBg)
	}
}
