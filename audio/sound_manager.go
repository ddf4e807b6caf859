// Package audio plays short synthesized cues for table actions
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// SoundManager owns the speaker and mixes cues into it
// Every cue is a no-op until Initialize succeeds, so a machine without an audio device runs silently
type SoundManager struct {
	mu          sync.Mutex
	cfg         Config
	mixer       *beep.Mixer
	initialized bool
	muted       bool
}

// NewSoundManager creates a sound manager
func NewSoundManager(cfg Config) *SoundManager {
	return &SoundManager{
		cfg:   cfg,
		mixer: &beep.Mixer{},
	}
}

// Initialize opens the speaker; disabled audio succeeds without touching the device
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized || !sm.cfg.Enabled {
		return nil
	}

	rate := beep.SampleRate(sm.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup stops all sounds and closes the speaker
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	sm.initialized = false
}

// SetMuted toggles output without closing the device
func (sm *SoundManager) SetMuted(muted bool) {
	sm.mu.Lock()
	sm.muted = muted
	sm.mu.Unlock()
}

// Muted reports the mute state
func (sm *SoundManager) Muted() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.muted
}

// Play mixes a cue into the output
func (sm *SoundManager) Play(t SoundType) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || sm.muted {
		return
	}
	s := GetSoundEffect(t, sm.cfg)
	if s == nil {
		return
	}
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

func (sm *SoundManager) Flip()    { sm.Play(SoundFlip) }
func (sm *SoundManager) Drop()    { sm.Play(SoundDrop) }
func (sm *SoundManager) Flick()   { sm.Play(SoundFlick) }
func (sm *SoundManager) Blocked() { sm.Play(SoundBlocked) }
func (sm *SoundManager) Pickup()  { sm.Play(SoundPickup) }
