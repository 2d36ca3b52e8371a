package main

import (
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

type MusicMode int

const (
	musicOff MusicMode = iota
	musicNormal
	musicPanic
)

// MusicPlayer loops a synthesized melody. Panic mode swaps to a faster,
// higher variant of the same pattern.
type MusicPlayer struct {
	ctx     *oto.Context
	mu      sync.Mutex
	mode    MusicMode
	player  *oto.Player
	volume  float64
	enabled bool
}

func NewMusicPlayer(ctx *oto.Context, volume float64, enabled bool) *MusicPlayer {
	if ctx == nil {
		return nil
	}
	return &MusicPlayer{
		ctx:     ctx,
		mode:    musicOff,
		volume:  clampVolume(volume),
		enabled: enabled,
	}
}

func (m *MusicPlayer) SetVolume(volume float64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.volume = clampVolume(volume)
	m.mu.Unlock()
}

func (m *MusicPlayer) SetEnabled(enabled bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.enabled = enabled
	mode := m.mode
	m.mu.Unlock()
	if !enabled {
		m.Stop()
	} else if mode != musicOff {
		m.start(mode)
	}
}

func (m *MusicPlayer) StartNormal() {
	m.start(musicNormal)
}

func (m *MusicPlayer) StartPanic() {
	m.start(musicPanic)
}

func (m *MusicPlayer) Stop() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.stopLocked()
	m.mode = musicOff
	m.mu.Unlock()
}

func (m *MusicPlayer) start(mode MusicMode) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		m.mode = mode
		return
	}
	if m.mode == mode && m.player != nil {
		return
	}
	m.stopLocked()
	source := newMelodyReader(audioSampleRate, mode, m.volumeValue)
	player := m.ctx.NewPlayer(source)
	player.Play()
	m.player = player
	m.mode = mode
}

func (m *MusicPlayer) stopLocked() {
	if m.player != nil {
		_ = m.player.Close()
		m.player = nil
	}
}

func (m *MusicPlayer) volumeValue() float64 {
	m.mu.Lock()
	volume := m.volume
	m.mu.Unlock()
	return volume
}

type melodyNote struct {
	frequency float64
	beats     int
}

// A short loopable progression; the panic variant plays the same notes a
// fourth up at roughly double tempo.
var melodyPattern = []melodyNote{
	{330, 2}, {392, 1}, {440, 2}, {392, 1},
	{330, 2}, {294, 1}, {330, 3},
	{440, 2}, {494, 1}, {523, 2}, {494, 1},
	{440, 2}, {392, 1}, {440, 3},
}

type melodyReader struct {
	sampleRate  int
	beatSamples int
	pitch       float64
	getVolume   func() float64
	noteIndex   int
	noteSample  int
}

func newMelodyReader(sampleRate int, mode MusicMode, getVolume func() float64) *melodyReader {
	r := &melodyReader{
		sampleRate:  sampleRate,
		beatSamples: int(float64(sampleRate) * (220 * time.Millisecond).Seconds()),
		pitch:       1,
		getVolume:   getVolume,
	}
	if mode == musicPanic {
		r.beatSamples = int(float64(sampleRate) * (120 * time.Millisecond).Seconds())
		r.pitch = 4.0 / 3.0
	}
	return r
}

// Read synthesizes signed 16-bit little-endian stereo frames; it never
// returns io.EOF, so the player loops forever.
func (r *melodyReader) Read(p []byte) (int, error) {
	volume := clampVolume(r.getVolume()) * 0.18
	frames := len(p) / 4
	for f := 0; f < frames; f++ {
		note := melodyPattern[r.noteIndex]
		total := note.beats * r.beatSamples
		env := 1.0
		fade := r.beatSamples / 8
		if fade > 0 {
			if r.noteSample < fade {
				env = float64(r.noteSample) / float64(fade)
			} else if r.noteSample > total-fade {
				env = float64(total-r.noteSample) / float64(fade)
			}
			if env < 0 {
				env = 0
			}
		}
		phase := 2 * math.Pi * note.frequency * r.pitch * float64(r.noteSample) / float64(r.sampleRate)
		value := int16(math.Sin(phase) * volume * env * (1<<15 - 1))
		p[f*4] = byte(value)
		p[f*4+1] = byte(value >> 8)
		p[f*4+2] = byte(value)
		p[f*4+3] = byte(value >> 8)
		r.noteSample++
		if r.noteSample >= total {
			r.noteSample = 0
			r.noteIndex = (r.noteIndex + 1) % len(melodyPattern)
		}
	}
	return frames * 4, nil
}
