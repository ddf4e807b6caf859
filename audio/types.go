package audio

// SoundType represents different sound cues
type SoundType int

const (
	SoundFlip    SoundType = iota // Card turned over
	SoundDrop                     // Card laid on the table
	SoundFlick                    // Card thrown across the table
	SoundBlocked                  // Action rejected on a covered card
	SoundPickup                   // Card taken into the hand
	soundTypeCount
)

func (s SoundType) String() string {
	switch s {
	case SoundFlip:
		return "flip"
	case SoundDrop:
		return "drop"
	case SoundFlick:
		return "flick"
	case SoundBlocked:
		return "blocked"
	case SoundPickup:
		return "pickup"
	default:
		return "unknown"
	}
}

// Config is the audio slice of the table configuration
type Config struct {
	Enabled    bool
	Volume     float64 // master volume 0..1
	SampleRate int
}
