package present

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/hgrotzin/language-localizer/engine"
)

var ErrMixerBusy = errors.New("all mixer voices busy")

// Sound is a loaded clip bound to the mixer that plays it.
type Sound struct {
	ID    string
	clip  *Clip
	mixer *AudioMixer
}

func (s *Sound) Play() error {
	if !s.mixer.Play(s.clip) {
		return ErrMixerBusy
	}
	return nil
}

// SoundCache maps stimulus ids to loaded sounds. It is filled once by
// LoadSounds and only read afterwards.
type SoundCache struct {
	mixer  *AudioMixer
	sounds map[string]*Sound
}

// LoadSounds loads every id as a WAV file relative to dir. Any file that
// cannot be loaded or converted fails the whole cache.
func LoadSounds(mixer *AudioMixer, dir string, ids []string) (*SoundCache, error) {
	c := &SoundCache{mixer: mixer, sounds: make(map[string]*Sound, len(ids))}
	var errs []error
	for _, id := range ids {
		if _, ok := c.sounds[id]; ok {
			continue
		}
		clip, err := loadClip(filepath.Join(dir, id))
		if err != nil {
			errs = append(errs, fmt.Errorf("stimulus %q: %w", id, err))
			continue
		}
		c.sounds[id] = &Sound{ID: id, clip: clip, mixer: mixer}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

func loadClip(path string) (*Clip, error) {
	spec := &sdl.AudioSpec{}
	data, err := sdl.LoadWAV(path, spec)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty audio data")
	}
	if spec.Format == MixSpec.Format && spec.Channels == MixSpec.Channels && spec.Freq == MixSpec.Freq {
		return &Clip{Data: data}, nil
	}
	target := MixSpec
	converted, err := sdl.ConvertAudioSamples(spec, data, &target)
	if err != nil {
		return nil, fmt.Errorf("convert to mixer format: %w", err)
	}
	return &Clip{Data: converted}, nil
}

func (c *SoundCache) Resolve(id string) (engine.Stimulus, bool) {
	s, ok := c.sounds[id]
	if !ok {
		return nil, false
	}
	return s, true
}

func (c *SoundCache) Len() int {
	return len(c.sounds)
}

// Destroy silences the mixer and drops every clip.
func (c *SoundCache) Destroy() {
	c.mixer.StopAll()
	clear(c.sounds)
}
