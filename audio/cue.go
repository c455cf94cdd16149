// Package audio plays the short tones that accompany spotlight activation
// and deactivation. Audio is optional: every method is safe without a device.
package audio

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/spotlight/parameter"
)

// Cue identifies a sound
type Cue int

const (
	CueActivate Cue = iota
	CueDeactivate
)

func (c Cue) String() string {
	switch c {
	case CueActivate:
		return "activate"
	case CueDeactivate:
		return "deactivate"
	}
	return "unknown"
}

// Player mixes cues into a single speaker stream
type Player struct {
	mu          sync.Mutex
	rate        beep.SampleRate
	volume      float64
	mixer       *beep.Mixer
	initialized bool
	log         *slog.Logger
}

// NewPlayer creates an uninitialised player; volume is linear in [0,1]
func NewPlayer(volume float64, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		rate:   beep.SampleRate(parameter.CueSampleRate),
		volume: volume,
		mixer:  &beep.Mixer{},
		log:    logger.With("component", "audio"),
	}
}

// Initialize opens the speaker; calling it twice is a no-op
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Ready reports whether the speaker is open
func (p *Player) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// Play queues the cue; ignored before Initialize
func (p *Player) Play(c Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	s := p.stream(c)
	if s == nil {
		p.log.Debug("unknown cue", "cue", int(c))
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// stream builds a fresh streamer for one playback
func (p *Player) stream(c Cue) beep.Streamer {
	var freq float64
	switch c {
	case CueActivate:
		freq = parameter.CueActivateFreq
	case CueDeactivate:
		freq = parameter.CueDeactivateFreq
	default:
		return nil
	}
	osc := NewOscillator(freq, parameter.CueDuration, WaveTriangle, p.rate)
	shaped := NewEnvelope(osc, parameter.CueDuration, parameter.CueAttack, parameter.CueRelease, p.rate)
	return newVolume(shaped, p.volume)
}

// Close stops playback and releases the speaker
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}
