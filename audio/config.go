package audio

// Config controls click sound playback
type Config struct {
	Enabled      bool
	MasterVolume float64 // 0.0 - 1.0
	SampleRate   int
}

// DefaultConfig returns audio on at half volume
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		MasterVolume: 0.5,
		SampleRate:   44100,
	}
}
