package parameter

import "time"

// Loop & Timing
const (
	// FrameUpdateInterval is the display refresh interval (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// EventChannelSize is the buffered capacity between the poll goroutine and the event loop
	EventChannelSize = 100

	// IndicatorDuration is how long the activation indicator stays in the status bar
	IndicatorDuration = 1 * time.Second
)

// Mask geometry
const (
	// MaskRingAlpha is the mask opacity at the spotlight radius, between the lit core and the dim layer
	MaskRingAlpha = 0.3

	// MaskOpaqueOffset is the distance past the radius where the dim layer becomes fully opaque
	MaskOpaqueOffset = 1.0
)

// Cursor marker (highlight style), sizes in pixels
const (
	CursorMarkerRadius    = 10.0
	CursorMarkerRingWidth = 2.0
	CursorMarkerFillAlpha = 0.2
	CursorMarkerRingAlpha = 0.6
)

// Terminal cell geometry used to map pixels to cells
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

// Editing steps for in-viewer adjustment keys
const (
	RadiusStep   = 5.0
	GradientStep = 2.0
	DimStep      = 0.05
	MaxRadius    = 1000.0
)

// Audio cue
const (
	CueSampleRate     = 44100
	CueDuration       = 60 * time.Millisecond
	CueAttack         = 5 * time.Millisecond
	CueRelease        = 40 * time.Millisecond
	CueActivateFreq   = 660.0
	CueDeactivateFreq = 440.0
	CueVolume         = 0.25
)
