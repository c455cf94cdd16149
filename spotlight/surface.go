package spotlight

// OverlayStyle is the initial appearance of a dim overlay
type OverlayStyle struct {
	Mask Mask
	Dim  float64 // alpha of the dim layer in [0,1]
}

// Overlay is a live full-viewport dim layer owned by one controller
type Overlay interface {
	SetMask(m Mask)
	SetDim(alpha float64)
	Remove()
}

// Cursor is a live replacement pointer marker
type Cursor interface {
	MoveTo(p Point)
	Remove()
}

// Surface is the host rendering environment of one page instance
type Surface interface {
	CreateOverlay(style OverlayStyle) Overlay
	CreateCursor(at Point) Cursor
	SetPointerHidden(hidden bool)
}

// FrameScheduler runs callbacks at the next display refresh
type FrameScheduler interface {
	RequestFrame(fn func())
}
