package status

import "sync/atomic"

// MaxLabelLen bounds stored labels so the status bar stays on one line
const MaxLabelLen = 32

// Label is a short string readable from any goroutine
type Label struct {
	ptr atomic.Pointer[string]
}

// Store sets the label, truncated to MaxLabelLen bytes
func (l *Label) Store(s string) {
	if len(s) > MaxLabelLen {
		s = s[:MaxLabelLen]
	}
	l.ptr.Store(&s)
}

// Load returns the label or ""
func (l *Label) Load() string {
	if p := l.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
