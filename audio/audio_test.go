package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
)

func testConfig() Config {
	return Config{Enabled: true, Volume: 0.6, SampleRate: 44100}
}

// drain streams s to exhaustion and returns the number of samples and the peak amplitude
func drain(t *testing.T, s beep.Streamer) (int, float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	total := 0
	peak := 0.0
	for i := 0; i < 10000; i++ {
		n, ok := s.Stream(buf)
		for j := 0; j < n; j++ {
			peak = max(peak, buf[j][0], -buf[j][0], buf[j][1], -buf[j][1])
		}
		total += n
		if !ok {
			return total, peak
		}
	}
	t.Fatal("Stream never drained")
	return 0, 0
}

// TestOscillatorLength verifies a finite oscillator yields exactly its duration
func TestOscillatorLength(t *testing.T) {
	rate := beep.SampleRate(44100)
	osc := NewOscillator(440, 100*time.Millisecond, WaveSine, rate)

	n, peak := drain(t, osc)
	if n != rate.N(100*time.Millisecond) {
		t.Errorf("Expected %d samples, got %d", rate.N(100*time.Millisecond), n)
	}
	if peak > 1.0 || peak < 0.9 {
		t.Errorf("Expected sine peak near 1, got %f", peak)
	}
	if osc.Err() != nil {
		t.Errorf("Expected no error, got: %v", osc.Err())
	}
}

// TestOscillatorWaves verifies every wave stays in [-1, 1]
func TestOscillatorWaves(t *testing.T) {
	rate := beep.SampleRate(8000)
	for _, w := range []WaveType{WaveSine, WaveSquare, WaveSaw, WaveNoise} {
		_, peak := drain(t, NewOscillator(220, 50*time.Millisecond, w, rate))
		if peak > 1.0 {
			t.Errorf("Wave %d out of range: %f", w, peak)
		}
	}
}

// TestEnvelopeRamps verifies attack starts silent and the body reaches full level
func TestEnvelopeRamps(t *testing.T) {
	rate := beep.SampleRate(1000)
	osc := NewOscillator(0, 100*time.Millisecond, WaveSquare, rate)
	env := NewEnvelope(osc, 100*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond, rate)

	buf := make([][2]float64, 100)
	n, _ := env.Stream(buf)
	if n != 100 {
		t.Fatalf("Expected 100 samples, got %d", n)
	}
	if buf[0][0] != 0 {
		t.Errorf("Expected silent first sample, got %f", buf[0][0])
	}
	if buf[50][0] != 1 {
		t.Errorf("Expected full level mid-body, got %f", buf[50][0])
	}
	if buf[99][0] <= 0 || buf[99][0] > 0.11 {
		t.Errorf("Expected release tail near zero, got %f", buf[99][0])
	}
}

// TestCuesAreFiniteAndBounded verifies every cue drains and never clips
func TestCuesAreFiniteAndBounded(t *testing.T) {
	cfg := testConfig()
	for st := SoundType(0); st < soundTypeCount; st++ {
		s := GetSoundEffect(st, cfg)
		if s == nil {
			t.Fatalf("No streamer for %v", st)
		}
		n, peak := drain(t, s)
		if n == 0 {
			t.Errorf("%v produced no samples", st)
		}
		if peak > 1.0 {
			t.Errorf("%v clips at %f", st, peak)
		}
	}
	if GetSoundEffect(soundTypeCount, cfg) != nil {
		t.Error("Expected nil for unknown sound type")
	}
}

// TestZeroVolumeIsSilent verifies muted volume yields silence
func TestZeroVolumeIsSilent(t *testing.T) {
	cfg := testConfig()
	cfg.Volume = 0
	_, peak := drain(t, CreateDropSound(cfg))
	if peak != 0 {
		t.Errorf("Expected silence, got peak %f", peak)
	}
}

// TestSoundManagerGracefulDegradation verifies cues don't panic when not initialized
func TestSoundManagerGracefulDegradation(t *testing.T) {
	sm := NewSoundManager(testConfig())

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Sound operations panicked without initialization: %v", r)
		}
	}()

	sm.Flip()
	sm.Drop()
	sm.Flick()
	sm.Blocked()
	sm.Pickup()
	sm.Cleanup()
}

// TestSoundManagerDisabled verifies disabled audio never opens the device
func TestSoundManagerDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	sm := NewSoundManager(cfg)
	if err := sm.Initialize(); err != nil {
		t.Errorf("Expected disabled init to succeed, got %v", err)
	}
	if sm.initialized {
		t.Error("Disabled manager opened the speaker")
	}
	sm.SetMuted(true)
	if !sm.Muted() {
		t.Error("Expected muted")
	}
}

func TestSoundTypeString(t *testing.T) {
	if SoundBlocked.String() != "blocked" || SoundType(99).String() != "unknown" {
		t.Error("Unexpected sound type names")
	}
}
