package main

import (
	"bytes"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

type SoundEvent int

const (
	SoundSwap SoundEvent = iota
	SoundCursorMove
	SoundPop
	SoundThump
	SoundBigThump
	SoundRaise
	SoundCountdown
	SoundGo
	SoundMenuMove
	SoundMenuSelect
	SoundGameOver
	SoundWin
)

type SoundEngine struct {
	enabled    bool
	sampleRate int
	ctx        *oto.Context
	volume     float64
	mu         sync.RWMutex
}

func NewSoundEngine(ctx *oto.Context, enabled bool) *SoundEngine {
	return &SoundEngine{
		enabled:    enabled,
		sampleRate: audioSampleRate,
		ctx:        ctx,
		volume:     0.7,
	}
}

func (s *SoundEngine) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}

func (s *SoundEngine) SetVolume(volume float64) {
	s.mu.Lock()
	s.volume = clampVolume(volume)
	s.mu.Unlock()
}

func (s *SoundEngine) Play(event SoundEvent) {
	s.playSequence(tonesForEvent(event))
}

// PlayChain renders an ascending jingle; longer chains climb further and
// bigger clears play louder.
func (s *SoundEngine) PlayChain(chainLength, blockCount int) {
	steps := chainLength
	if steps > 8 {
		steps = 8
	}
	volume := 0.24 + 0.02*float64(blockCount)
	if volume > 0.36 {
		volume = 0.36
	}
	sequence := make([]toneSpec, 0, steps)
	for i := 0; i < steps; i++ {
		sequence = append(sequence, toneSpec{
			frequency: 440 * math.Pow(2, float64(i)/6),
			duration:  55 * time.Millisecond,
			volume:    volume,
		})
	}
	s.playSequence(sequence)
}

func (s *SoundEngine) playSequence(sequence []toneSpec) {
	s.mu.RLock()
	ctx := s.ctx
	enabled := s.enabled
	volume := s.volume
	s.mu.RUnlock()
	if !enabled || ctx == nil || len(sequence) == 0 {
		return
	}
	go func() {
		buffer := renderToneSequence(sequence, s.sampleRate, volume)
		reader := bytes.NewReader(buffer)
		player := ctx.NewPlayer(reader)
		player.Play()
		for player.IsPlaying() {
			time.Sleep(5 * time.Millisecond)
		}
		_ = player.Close()
	}()
}

type toneSpec struct {
	frequency float64
	duration  time.Duration
	volume    float64
}

func tonesForEvent(event SoundEvent) []toneSpec {
	switch event {
	case SoundSwap:
		return []toneSpec{{frequency: 520, duration: 35 * time.Millisecond, volume: 0.22}}
	case SoundCursorMove:
		return []toneSpec{{frequency: 380, duration: 22 * time.Millisecond, volume: 0.15}}
	case SoundPop:
		return []toneSpec{{frequency: 660, duration: 60 * time.Millisecond, volume: 0.26}}
	case SoundThump:
		return []toneSpec{{frequency: 150, duration: 90 * time.Millisecond, volume: 0.3}}
	case SoundBigThump:
		return []toneSpec{
			{frequency: 120, duration: 110 * time.Millisecond, volume: 0.34},
			{frequency: 90, duration: 110 * time.Millisecond, volume: 0.34},
		}
	case SoundRaise:
		return []toneSpec{{frequency: 300, duration: 30 * time.Millisecond, volume: 0.14}}
	case SoundCountdown:
		return []toneSpec{{frequency: 440, duration: 90 * time.Millisecond, volume: 0.24}}
	case SoundGo:
		return []toneSpec{{frequency: 880, duration: 150 * time.Millisecond, volume: 0.28}}
	case SoundMenuMove:
		return []toneSpec{{frequency: 260, duration: 24 * time.Millisecond, volume: 0.16}}
	case SoundMenuSelect:
		return []toneSpec{{frequency: 520, duration: 70 * time.Millisecond, volume: 0.2}}
	case SoundGameOver:
		return []toneSpec{
			{frequency: 260, duration: 120 * time.Millisecond, volume: 0.28},
			{frequency: 200, duration: 140 * time.Millisecond, volume: 0.28},
			{frequency: 150, duration: 200 * time.Millisecond, volume: 0.28},
		}
	case SoundWin:
		return []toneSpec{
			{frequency: 520, duration: 90 * time.Millisecond, volume: 0.26},
			{frequency: 660, duration: 90 * time.Millisecond, volume: 0.26},
			{frequency: 880, duration: 160 * time.Millisecond, volume: 0.26},
		}
	default:
		return nil
	}
}

func renderToneSequence(sequence []toneSpec, sampleRate int, masterVolume float64) []byte {
	baseVolume := 0.3
	gap := 10 * time.Millisecond
	gapSamples := int(float64(sampleRate) * gap.Seconds())
	bytesPerSample := 4
	totalSamples := 0
	for i, spec := range sequence {
		samples := int(float64(sampleRate) * spec.duration.Seconds())
		totalSamples += samples
		if i < len(sequence)-1 {
			totalSamples += gapSamples
		}
	}
	buffer := make([]byte, totalSamples*bytesPerSample)
	index := 0
	for i, spec := range sequence {
		volume := baseVolume
		if spec.volume > 0 {
			volume = spec.volume
		}
		volume *= clampVolume(masterVolume)
		renderTone(buffer, index, spec, sampleRate, volume)
		samples := int(float64(sampleRate) * spec.duration.Seconds())
		index += samples * bytesPerSample
		if i < len(sequence)-1 {
			index += gapSamples * bytesPerSample
		}
	}
	return buffer
}

func renderTone(buffer []byte, start int, spec toneSpec, sampleRate int, volume float64) {
	const maxInt16 = 1<<15 - 1
	samples := int(float64(sampleRate) * spec.duration.Seconds())
	fadeSamples := int(float64(sampleRate) * 0.003)
	for i := 0; i < samples; i++ {
		env := 1.0
		if fadeSamples > 0 {
			if i < fadeSamples {
				env = float64(i) / float64(fadeSamples)
			} else if i > samples-fadeSamples {
				env = float64(samples-i) / float64(fadeSamples)
			}
			if env < 0 {
				env = 0
			}
		}
		sample := math.Sin(2 * math.Pi * spec.frequency * float64(i) / float64(sampleRate))
		value := int16(sample * volume * env * maxInt16)
		buffer[start+i*4] = byte(value)
		buffer[start+i*4+1] = byte(value >> 8)
		buffer[start+i*4+2] = byte(value)
		buffer[start+i*4+3] = byte(value >> 8)
	}
}

func clampVolume(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
