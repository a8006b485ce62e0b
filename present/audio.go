package present

import (
	"sync"
	"unsafe"

	"github.com/Zyko0/go-sdl3/sdl"
)

const (
	MaxVoices         = 16
	AudioScratchBytes = 4096
)

// MixSpec is the format every clip is converted to at load time.
var MixSpec = sdl.AudioSpec{Format: sdl.AUDIO_S16, Channels: 2, Freq: 44100}

// Clip is PCM data in MixSpec format.
type Clip struct {
	Data []byte
}

type voice struct {
	clip   *Clip
	pos    int
	active bool
}

// AudioMixer sums up to MaxVoices clips into the SDL audio stream. Play is
// called from the engine; Callback runs on SDL's audio thread.
type AudioMixer struct {
	mu      sync.Mutex
	voices  [MaxVoices]voice
	scratch []byte
}

func NewAudioMixer() *AudioMixer {
	return &AudioMixer{
		scratch: make([]byte, AudioScratchBytes),
	}
}

func (m *AudioMixer) Callback(stream *sdl.AudioStream, additionalAmount, totalAmount int32) {
	remaining := int(additionalAmount)
	for remaining > 0 {
		chunk := min(remaining, AudioScratchBytes)
		buf := m.scratch[:chunk]
		m.mix(buf)
		stream.PutData(buf)
		remaining -= chunk
	}
}

func (m *AudioMixer) mix(buf []byte) {
	clear(buf)
	dst := samples(buf)

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.voices {
		v := &m.voices[i]
		if !v.active {
			continue
		}
		n := min(len(buf), len(v.clip.Data)-v.pos)
		for j, s := range samples(v.clip.Data[v.pos : v.pos+n]) {
			dst[j] = saturate(int32(dst[j]) + int32(s))
		}
		v.pos += n
		if v.pos >= len(v.clip.Data) {
			*v = voice{}
		}
	}
}

// Play starts c on a free voice. It reports false when every voice is busy.
func (m *AudioMixer) Play(c *Clip) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.voices {
		if !m.voices[i].active {
			m.voices[i] = voice{clip: c, active: true}
			return true
		}
	}
	return false
}

func (m *AudioMixer) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.voices {
		m.voices[i] = voice{}
	}
}

func (m *AudioMixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.voices {
		if v.active {
			n++
		}
	}
	return n
}

func samples(b []byte) []int16 {
	if len(b) < 2 {
		return nil
	}
	return unsafe.Slice((*int16)(unsafe.Pointer(&b[0])), len(b)/2)
}

func saturate(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
