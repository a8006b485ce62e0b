// Package present owns the SDL side of a session: the window and renderer,
// the text font, the audio stream and the keyboard. A Runtime is the
// display, clock and response poller the engine is given.
package present

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"

	"github.com/hgrotzin/language-localizer/config"
	"github.com/hgrotzin/language-localizer/engine"
)

type Runtime struct {
	Mixer *AudioMixer

	window   *sdl.Window
	renderer *sdl.Renderer
	font     *ttf.Font
	stream   *sdl.AudioStream
	closers  []func()

	width, height int
	bg, fg, fix   sdl.Color

	start    uint64
	response map[string]bool
	abortKey string
	pending  []string
	aborted  bool
}

// Open initialises SDL, opens the window, loads the font and starts the
// audio stream. Close releases everything Open acquired, in reverse order.
func Open(cfg *config.Config) (rt *Runtime, err error) {
	rt = &Runtime{
		width:    cfg.ScreenWidth,
		height:   cfg.ScreenHeight,
		response: keySet(cfg.Keys.Response),
		abortKey: cfg.Keys.Abort,
	}
	defer func() {
		if err != nil {
			rt.Close()
			rt = nil
		}
	}()

	if rt.bg, err = toColor(cfg.BGColor); err != nil {
		return rt, err
	}
	if rt.fg, err = toColor(cfg.TextColor); err != nil {
		return rt, err
	}
	if rt.fix, err = toColor(cfg.FixationColor); err != nil {
		return rt, err
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS); err != nil {
		return rt, fmt.Errorf("SDL_Init: %w", err)
	}
	rt.closers = append(rt.closers, func() { sdl.Quit() })

	if err := ttf.Init(); err != nil {
		return rt, fmt.Errorf("TTF_Init: %w", err)
	}
	rt.closers = append(rt.closers, func() { ttf.Quit() })

	windowFlags := sdl.WINDOW_RESIZABLE
	if cfg.Fullscreen {
		windowFlags |= sdl.WINDOW_FULLSCREEN
	}
	window, renderer, err := sdl.CreateWindowAndRenderer(cfg.ExperimentName, cfg.ScreenWidth, cfg.ScreenHeight, windowFlags)
	if err != nil {
		return rt, fmt.Errorf("create window: %w", err)
	}
	rt.window, rt.renderer = window, renderer
	rt.closers = append(rt.closers, func() { window.Destroy() }, func() { renderer.Destroy() })

	if cfg.VSync {
		renderer.SetVSync(1)
	} else {
		renderer.SetVSync(0)
	}

	fontPath := FindFont(cfg.FontFile)
	if fontPath == "" {
		return rt, errors.New("no usable font found; set font_file")
	}
	font, err := ttf.OpenFont(fontPath, float32(cfg.FontSize))
	if err != nil {
		return rt, fmt.Errorf("load font %s: %w", fontPath, err)
	}
	rt.font = font
	rt.closers = append(rt.closers, func() { font.Close() })

	rt.Mixer = NewAudioMixer()
	spec := MixSpec
	cb := sdl.NewAudioStreamCallback(rt.Mixer.Callback)
	stream := sdl.AUDIO_DEVICE_DEFAULT_PLAYBACK.OpenAudioDeviceStream(&spec, cb)
	if stream == nil {
		return rt, errors.New("failed to open audio stream")
	}
	rt.stream = stream
	rt.closers = append(rt.closers, func() { stream.Destroy() })
	stream.ResumeDevice()

	rt.start = sdl.Ticks()
	return rt, nil
}

func (rt *Runtime) Close() {
	if rt.Mixer != nil {
		rt.Mixer.StopAll()
	}
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

// Now is milliseconds since Open, from SDL's monotonic tick counter.
func (rt *Runtime) Now() time.Duration {
	return time.Duration(sdl.Ticks()-rt.start) * time.Millisecond
}

// Pump drains SDL's event queue into the response buffer.
func (rt *Runtime) Pump() {
	var ev sdl.Event
	for sdl.PollEvent(&ev) {
		rt.handle(&ev)
	}
}

func (rt *Runtime) Poll() []string {
	keys := rt.pending
	rt.pending = nil
	return keys
}

func (rt *Runtime) AbortRequested() bool {
	return rt.aborted
}

// handle records one event and returns the normalised key name for key
// presses. Auto-repeat events are dropped.
func (rt *Runtime) handle(ev *sdl.Event) string {
	switch ev.Type {
	case sdl.EVENT_QUIT:
		rt.aborted = true
	case sdl.EVENT_KEY_DOWN:
		ke := ev.KeyboardEvent()
		p := classifyKey(ke.Key.KeyName(), ke.Repeat, rt.abortKey, rt.response)
		if p.Abort {
			rt.aborted = true
		}
		if p.Response {
			rt.pending = append(rt.pending, p.Name)
		}
		return p.Name
	}
	return ""
}

// discard drains events queued before a wait starts. Responses in the queue
// are dropped; an abort among them still latches.
func (rt *Runtime) discard() {
	rt.Pump()
	rt.pending = nil
}

// WaitKeys blocks until one of keys is pressed after the call and returns
// it. Presses already queued do not count. There is no timeout; the cancel
// key and ctx end the wait early.
func (rt *Runtime) WaitKeys(ctx context.Context, keys ...string) (string, error) {
	want := keySet(keys)
	rt.discard()
	for {
		if rt.aborted {
			return "", engine.ErrAborted
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		var ev sdl.Event
		for sdl.PollEvent(&ev) {
			name := rt.handle(&ev)
			if rt.aborted {
				return "", engine.ErrAborted
			}
			if want[name] {
				return name, nil
			}
		}
		sdl.Delay(1)
	}
}

type keyGate struct {
	rt   *Runtime
	keys []string
}

func (g keyGate) Wait(ctx context.Context) error {
	_, err := g.rt.WaitKeys(ctx, g.keys...)
	return err
}

// KeyGate is a gate that opens on any of keys.
func (rt *Runtime) KeyGate(keys ...string) engine.Gate {
	return keyGate{rt: rt, keys: keys}
}

func toColor(s string) (sdl.Color, error) {
	c, err := config.ParseRGBA(s)
	if err != nil {
		return sdl.Color{}, err
	}
	return sdl.Color{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
}
