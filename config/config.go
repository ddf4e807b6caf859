// Package config loads the table tunables from TOML over built-in defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Card holds the physical card dimensions, in world units
type Card struct {
	Width         float64 `toml:"width"`
	Thickness     float64 `toml:"thickness"`
	Depth         float64 `toml:"depth"`
	StackGap      float64 `toml:"stack_gap"`
	OverlapMargin float64 `toml:"overlap_margin"`
}

// Table is the playable surface; the origin is its centre
type Table struct {
	Width      float64 `toml:"width"`
	Depth      float64 `toml:"depth"`
	DrawOffset float64 `toml:"draw_offset"`
}

// Physics tunes the rigid-body world and the flick/settle thresholds
type Physics struct {
	Gravity           float64 `toml:"gravity"`
	Mass              float64 `toml:"mass"`
	Restitution       float64 `toml:"restitution"`
	Friction          float64 `toml:"friction"`
	LinearDamping     float64 `toml:"linear_damping"`
	AngularDamping    float64 `toml:"angular_damping"`
	FlickImpulseScale float64 `toml:"flick_impulse_scale"`
	FlickMaxSpeed     float64 `toml:"flick_max_speed"`
	FlickThreshold    float64 `toml:"flick_threshold"`
	SettleSpeed       float64 `toml:"settle_speed"`
	VelocitySamples   int     `toml:"velocity_samples"`
}

// Flip shapes the three-phase flip animation
type Flip struct {
	DurationMs int     `toml:"duration_ms"`
	LiftHeight float64 `toml:"lift_height"`
}

// Drag shapes the pinned pose while dragging and the hand drop
type Drag struct {
	PlaneHeight  float64 `toml:"plane_height"`
	HoverHeight  float64 `toml:"hover_height"`
	HandDropLift float64 `toml:"hand_drop_lift"`
}

// UI covers terminal layout and input timing
type UI struct {
	HandZoneRows  int `toml:"hand_zone_rows"`
	ToastTTLMs    int `toml:"toast_ttl_ms"`
	DoubleClickMs int `toml:"double_click_ms"`
	FrameMs       int `toml:"frame_ms"`
}

// Audio toggles sound cues
type Audio struct {
	Enabled    bool    `toml:"enabled"`
	Volume     float64 `toml:"volume"`
	SampleRate int     `toml:"sample_rate"`
}

// Log selects the structured log sink; an empty file disables logging
type Log struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// Config is the full tunable set
type Config struct {
	Card    Card    `toml:"card"`
	Table   Table   `toml:"table"`
	Physics Physics `toml:"physics"`
	Flip    Flip    `toml:"flip"`
	Drag    Drag    `toml:"drag"`
	UI      UI      `toml:"ui"`
	Audio   Audio   `toml:"audio"`
	Log     Log     `toml:"log"`
}

// Default returns the standard poker-card table
func Default() Config {
	return Config{
		Card: Card{
			Width:         0.635,
			Thickness:     0.003,
			Depth:         0.889,
			StackGap:      0.01,
			OverlapMargin: 0.05,
		},
		Table: Table{
			Width:      12,
			Depth:      8,
			DrawOffset: 1.2,
		},
		Physics: Physics{
			Gravity:           -9.81,
			Mass:              0.01,
			Restitution:       0.1,
			Friction:          0.8,
			LinearDamping:     4.0,
			AngularDamping:    4.0,
			FlickImpulseScale: 0.002,
			FlickMaxSpeed:     5,
			FlickThreshold:    0.1,
			SettleSpeed:       0.05,
			VelocitySamples:   5,
		},
		Flip: Flip{
			DurationMs: 500,
			LiftHeight: 0.6,
		},
		Drag: Drag{
			PlaneHeight:  0.05,
			HoverHeight:  0.3,
			HandDropLift: 0.5,
		},
		UI: UI{
			HandZoneRows:  5,
			ToastTTLMs:    2500,
			DoubleClickMs: 400,
			FrameMs:       16,
		},
		Audio: Audio{
			Enabled:    true,
			Volume:     0.6,
			SampleRate: 44100,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// ErrInvalid marks a configuration value outside its accepted range
var ErrInvalid = errors.New("invalid config")

// Load decodes a TOML file over Default and validates the result
// Unknown keys are rejected so typos surface instead of silently using defaults
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := Decode(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Decode applies TOML data onto cfg and validates it
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return cfg.Validate()
}

// Encode renders cfg as TOML, used to print a starter config file
func Encode(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// Validate enforces hard safety bounds
func (c *Config) Validate() error {
	checks := []struct {
		name   string
		val    float64
		lo, hi float64
	}{
		{"card.width", c.Card.Width, 0.01, 10},
		{"card.thickness", c.Card.Thickness, 0.0001, 1},
		{"card.depth", c.Card.Depth, 0.01, 10},
		{"card.stack_gap", c.Card.StackGap, 0, 1},
		{"card.overlap_margin", c.Card.OverlapMargin, 0, 1},
		{"table.width", c.Table.Width, 1, 1000},
		{"table.depth", c.Table.Depth, 1, 1000},
		{"table.draw_offset", c.Table.DrawOffset, 0, 100},
		{"physics.gravity", c.Physics.Gravity, -100, 0},
		{"physics.mass", c.Physics.Mass, 0.0001, 100},
		{"physics.restitution", c.Physics.Restitution, 0, 1},
		{"physics.friction", c.Physics.Friction, 0, 10},
		{"physics.linear_damping", c.Physics.LinearDamping, 0, 100},
		{"physics.angular_damping", c.Physics.AngularDamping, 0, 100},
		{"physics.flick_impulse_scale", c.Physics.FlickImpulseScale, 0, 10},
		{"physics.flick_max_speed", c.Physics.FlickMaxSpeed, 0, 1000},
		{"physics.flick_threshold", c.Physics.FlickThreshold, 0, 1000},
		{"physics.settle_speed", c.Physics.SettleSpeed, 0, 100},
		{"physics.velocity_samples", float64(c.Physics.VelocitySamples), 2, 64},
		{"flip.duration_ms", float64(c.Flip.DurationMs), 3, 60000},
		{"flip.lift_height", c.Flip.LiftHeight, 0, 100},
		{"drag.plane_height", c.Drag.PlaneHeight, 0, 100},
		{"drag.hover_height", c.Drag.HoverHeight, 0, 100},
		{"drag.hand_drop_lift", c.Drag.HandDropLift, 0, 100},
		{"ui.hand_zone_rows", float64(c.UI.HandZoneRows), 1, 50},
		{"ui.toast_ttl_ms", float64(c.UI.ToastTTLMs), 1, 600000},
		{"ui.double_click_ms", float64(c.UI.DoubleClickMs), 1, 5000},
		{"ui.frame_ms", float64(c.UI.FrameMs), 1, 1000},
		{"audio.volume", c.Audio.Volume, 0, 1},
		{"audio.sample_rate", float64(c.Audio.SampleRate), 8000, 192000},
	}
	for _, ck := range checks {
		if math.IsNaN(ck.val) || ck.val < ck.lo || ck.val > ck.hi {
			return fmt.Errorf("%w: %s=%v outside [%v, %v]", ErrInvalid, ck.name, ck.val, ck.lo, ck.hi)
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level=%q", ErrInvalid, c.Log.Level)
	}
	return nil
}

// FlipDuration returns the total flip animation length
func (c *Config) FlipDuration() time.Duration {
	return time.Duration(c.Flip.DurationMs) * time.Millisecond
}

// ToastTTL returns how long a feedback message stays visible
func (c *Config) ToastTTL() time.Duration {
	return time.Duration(c.UI.ToastTTLMs) * time.Millisecond
}

// DoubleClick returns the maximum gap between presses of a double click
func (c *Config) DoubleClick() time.Duration {
	return time.Duration(c.UI.DoubleClickMs) * time.Millisecond
}

// FrameInterval returns the frame ticker period
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.UI.FrameMs) * time.Millisecond
}
