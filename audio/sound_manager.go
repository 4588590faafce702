package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

// resampleQuality is the beep.Resample quality used when a sound's rate differs from the speaker's
const resampleQuality = 4

// ErrUnknownFormat is returned for sound data that is neither WAV nor MP3
var ErrUnknownFormat = errors.New("unknown sound format")

// SoundManager decodes click sounds into memory and plays them through one mixer.
// Without an audio device every call is a silent no-op.
type SoundManager struct {
	mu          sync.Mutex
	cfg         Config
	format      beep.Format
	mixer       *beep.Mixer
	buffers     map[string]*beep.Buffer
	initialized bool
	logger      *log.Logger
}

// NewSoundManager creates a sound manager; call Initialize to open the speaker
func NewSoundManager(cfg Config, logger *log.Logger) *SoundManager {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultConfig().SampleRate
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &SoundManager{
		cfg:     cfg,
		format:  beep.Format{SampleRate: beep.SampleRate(cfg.SampleRate), NumChannels: 2, Precision: 2},
		mixer:   &beep.Mixer{},
		buffers: make(map[string]*beep.Buffer),
		logger:  logger,
	}
}

// Initialize opens the speaker. Disabled audio leaves the manager silent.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized || !sm.cfg.Enabled {
		return nil
	}

	rate := sm.format.SampleRate
	if err := speaker.Init(rate, rate.N(time.Millisecond*100)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Initialized reports whether sounds are audible
func (sm *SoundManager) Initialized() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.initialized
}

// Load decodes a WAV or MP3 sound and keeps it resampled to the speaker rate
func (sm *SoundManager) Load(ref string, data []byte) error {
	buf, err := sm.decode(data)
	if err != nil {
		return fmt.Errorf("sound %s: %w", ref, err)
	}

	sm.mu.Lock()
	sm.buffers[ref] = buf
	sm.mu.Unlock()

	sm.logger.Printf("[AUDIO] loaded %s (%s)", ref, sm.format.SampleRate.D(buf.Len()))
	return nil
}

func (sm *SoundManager) decode(data []byte) (*beep.Buffer, error) {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	switch {
	case isWAV(data):
		streamer, format, err = wav.Decode(bytes.NewReader(data))
	case isMP3(data):
		streamer, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	default:
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != sm.format.SampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, sm.format.SampleRate, streamer)
	}

	buf := beep.NewBuffer(sm.format)
	buf.Append(s)
	if err := streamer.Err(); err != nil {
		return nil, err
	}
	return buf, nil
}

func isWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// isMP3 accepts an ID3 tag or an MPEG frame sync
func isMP3(data []byte) bool {
	if len(data) >= 3 && string(data[0:3]) == "ID3" {
		return true
	}
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

// Play starts a loaded sound and returns immediately; unknown refs are ignored
func (sm *SoundManager) Play(ref string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || ref == "" {
		return
	}
	buf, ok := sm.buffers[ref]
	if !ok {
		sm.logger.Printf("[AUDIO] sound %s not loaded", ref)
		return
	}

	speaker.Lock()
	sm.mixer.Add(newVolume(buf.Streamer(0, buf.Len()), sm.cfg.MasterVolume))
	speaker.Unlock()
}

// Release drops the sounds loaded for a trial and silences anything still playing
func (sm *SoundManager) Release() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	clear(sm.buffers)
	if sm.initialized {
		speaker.Lock()
		sm.mixer.Clear()
		speaker.Unlock()
	}
}

// Cleanup stops all sounds and closes the speaker
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	clear(sm.buffers)
	if !sm.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	sm.initialized = false
}

// newVolume wraps s with a linear gain; math.Log2(0) is -Inf so zero gain is silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}
