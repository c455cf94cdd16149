package viewer

import (
	"github.com/google/uuid"

	"github.com/lixenwraith/spotlight/render"
	"github.com/lixenwraith/spotlight/spotlight"
)

// Tab is one page instance: a document, its surface and, once injected, its controller
type Tab struct {
	ID  string
	Doc Document

	surface *render.Surface
	frames  render.FrameQueue
	ctrl    *spotlight.Controller
	scroll  int
}

func newTab(doc Document, cs render.CellSize) *Tab {
	return &Tab{
		ID:      uuid.NewString(),
		Doc:     doc,
		surface: render.NewSurface(cs),
	}
}

// Controller returns the attached controller or nil
func (t *Tab) Controller() *spotlight.Controller {
	return t.ctrl
}

// Surface returns the page surface
func (t *Tab) Surface() *render.Surface {
	return t.surface
}

func (t *Tab) scrollBy(delta, viewHeight int) {
	limit := max(len(t.Doc.Lines)-viewHeight, 0)
	t.scroll = min(max(t.scroll+delta, 0), limit)
}

// close detaches the controller and drops any handles left on the surface
func (t *Tab) close() {
	if t.ctrl != nil {
		t.ctrl.Close()
		t.ctrl = nil
	}
	t.surface.Reset()
}
