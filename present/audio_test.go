package present

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pcm(vals ...int16) *Clip {
	b := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.NativeEndian.PutUint16(b[2*i:], uint16(v))
	}
	return &Clip{Data: b}
}

func decode(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.NativeEndian.Uint16(b[2*i:]))
	}
	return out
}

func TestMixSumsAndSaturates(t *testing.T) {
	m := NewAudioMixer()
	require.True(t, m.Play(pcm(100, 30000, -30000, 5)))
	require.True(t, m.Play(pcm(200, 30000, -30000, 5)))

	buf := make([]byte, 8)
	m.mix(buf)
	assert.Equal(t, []int16{300, 32767, -32768, 10}, decode(buf))
}

func TestVoiceFinishes(t *testing.T) {
	m := NewAudioMixer()
	require.True(t, m.Play(pcm(1, 2, 3)))

	buf := make([]byte, 4)
	m.mix(buf)
	assert.Equal(t, []int16{1, 2}, decode(buf))
	assert.Equal(t, 1, m.Active())

	m.mix(buf)
	assert.Equal(t, []int16{3, 0}, decode(buf))
	assert.Equal(t, 0, m.Active())

	m.mix(buf)
	assert.Equal(t, []int16{0, 0}, decode(buf))
}

func TestPlayRefusesWhenFull(t *testing.T) {
	m := NewAudioMixer()
	clip := pcm(1)
	for range MaxVoices {
		require.True(t, m.Play(clip))
	}
	assert.False(t, m.Play(clip))

	s := &Sound{ID: "a.wav", clip: clip, mixer: m}
	assert.ErrorIs(t, s.Play(), ErrMixerBusy)

	m.StopAll()
	assert.Equal(t, 0, m.Active())
	assert.NoError(t, s.Play())
}

func TestSoundCacheResolve(t *testing.T) {
	m := NewAudioMixer()
	c := &SoundCache{mixer: m, sounds: map[string]*Sound{
		"a.wav": {ID: "a.wav", clip: pcm(1), mixer: m},
	}}
	s, ok := c.Resolve("a.wav")
	require.True(t, ok)
	require.NoError(t, s.Play())
	assert.Equal(t, 1, m.Active())

	_, ok = c.Resolve("missing.wav")
	assert.False(t, ok)

	c.Destroy()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, m.Active())
}
