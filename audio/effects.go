package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// Cue timings
const (
	flipNoteDuration = 60 * time.Millisecond
	flipAttack       = 5 * time.Millisecond
	flipRelease      = 40 * time.Millisecond

	dropDuration = 90 * time.Millisecond
	dropAttack   = 2 * time.Millisecond
	dropRelease  = 80 * time.Millisecond

	flickDuration = 120 * time.Millisecond
	flickAttack   = 10 * time.Millisecond
	flickRelease  = 100 * time.Millisecond

	blockedDuration = 150 * time.Millisecond
	blockedAttack   = 5 * time.Millisecond
	blockedRelease  = 60 * time.Millisecond

	pickupDuration        = 150 * time.Millisecond
	pickupAttack          = 3 * time.Millisecond
	pickupFundamentalRel  = 140 * time.Millisecond
	pickupOvertoneRelease = 70 * time.Millisecond
)

// oscillator generates a fixed-length raw waveform
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a finite oscillator stream
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

// NewEnvelope shapes s with attack and release ramps over duration
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer:       s,
		attackSamples:  rate.N(attack),
		releaseSamples: rate.N(release),
		totalSamples:   rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	releaseStart := max(e.totalSamples-e.releaseSamples, e.attackSamples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples {
			vol = float64(e.position) / float64(e.attackSamples)
		} else if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = max(float64(e.totalSamples-e.position)/float64(e.releaseSamples), 0)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales a stream linearly; zero or negative volume is silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// CreateFlipSound is a quick rising two-note blip
func CreateFlipSound(cfg Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	n1 := NewEnvelope(NewOscillator(660, flipNoteDuration, WaveSine, rate), flipNoteDuration, flipAttack, flipRelease, rate)
	n2 := NewEnvelope(NewOscillator(990, flipNoteDuration, WaveSine, rate), flipNoteDuration, flipAttack, flipRelease, rate)
	return newVolume(beep.Seq(n1, n2), 0.5*cfg.Volume)
}

// CreateDropSound is a short low thud
func CreateDropSound(cfg Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	osc := NewOscillator(140, dropDuration, WaveSine, rate)
	return newVolume(NewEnvelope(osc, dropDuration, dropAttack, dropRelease, rate), 0.8*cfg.Volume)
}

// CreateFlickSound is a noise whoosh
func CreateFlickSound(cfg Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	noise := NewOscillator(0, flickDuration, WaveNoise, rate)
	return newVolume(NewEnvelope(noise, flickDuration, flickAttack, flickRelease, rate), 0.3*cfg.Volume)
}

// CreateBlockedSound is a harsh low buzz
func CreateBlockedSound(cfg Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	osc := NewOscillator(100, blockedDuration, WaveSaw, rate)
	return newVolume(NewEnvelope(osc, blockedDuration, blockedAttack, blockedRelease, rate), 0.4*cfg.Volume)
}

// CreatePickupSound is a bell with an octave overtone
func CreatePickupSound(cfg Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	fund := NewEnvelope(NewOscillator(880, pickupDuration, WaveSine, rate), pickupDuration, pickupAttack, pickupFundamentalRel, rate)
	over := NewEnvelope(NewOscillator(1760, pickupDuration, WaveSine, rate), pickupDuration, pickupAttack, pickupOvertoneRelease, rate)
	mixed := beep.Mix(newVolume(fund, 0.7), newVolume(over, 0.3))
	return newVolume(mixed, 0.6*cfg.Volume)
}

// GetSoundEffect returns a fresh streamer for the cue
func GetSoundEffect(soundType SoundType, cfg Config) beep.Streamer {
	switch soundType {
	case SoundFlip:
		return CreateFlipSound(cfg)
	case SoundDrop:
		return CreateDropSound(cfg)
	case SoundFlick:
		return CreateFlickSound(cfg)
	case SoundBlocked:
		return CreateBlockedSound(cfg)
	case SoundPickup:
		return CreatePickupSound(cfg)
	default:
		return nil
	}
}
