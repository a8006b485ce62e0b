package present

import (
	"context"
	"fmt"
	"strings"

	"github.com/Zyko0/go-sdl3/img"
	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/hgrotzin/language-localizer/engine"
)

const (
	CrossSize   = 20
	lineSpacing = 1.3
)

func (rt *Runtime) clear() {
	rt.renderer.SetDrawColor(rt.bg.R, rt.bg.G, rt.bg.B, rt.bg.A)
	rt.renderer.Clear()
}

func (rt *Runtime) ShowFixation() error {
	rt.clear()
	rt.renderer.SetDrawColor(rt.fix.R, rt.fix.G, rt.fix.B, rt.fix.A)
	mx, my := float32(rt.width)/2, float32(rt.height)/2
	rt.renderer.RenderLine(mx-CrossSize, my, mx+CrossSize, my)
	rt.renderer.RenderLine(mx, my-CrossSize, mx, my+CrossSize)
	rt.renderer.Present()
	return nil
}

// ShowText draws text centred on screen, one rendered line per "\n".
func (rt *Runtime) ShowText(text string) error {
	rt.clear()

	type line struct {
		tex  *sdl.Texture
		w, h float32
	}
	var lines []line
	defer func() {
		for _, l := range lines {
			l.tex.Destroy()
		}
	}()

	var total float32
	for _, s := range strings.Split(text, "\n") {
		if s == "" {
			s = " "
		}
		surf, err := rt.font.RenderTextBlended(s, rt.fg)
		if err != nil || surf == nil {
			return fmt.Errorf("render text %q: %v", s, err)
		}
		tex, err := rt.renderer.CreateTextureFromSurface(surf)
		w, h := float32(surf.W), float32(surf.H)
		surf.Destroy()
		if err != nil {
			return fmt.Errorf("text texture: %w", err)
		}
		lines = append(lines, line{tex: tex, w: w, h: h})
		total += h * lineSpacing
	}

	y := (float32(rt.height) - total) / 2
	for _, l := range lines {
		dst := sdl.FRect{X: (float32(rt.width) - l.w) / 2, Y: y, W: l.w, H: l.h}
		rt.renderer.RenderTexture(l.tex, nil, &dst)
		y += l.h * lineSpacing
	}
	rt.renderer.Present()
	return nil
}

// ShowSplash shows an image until any key is pressed. An empty path or an
// unreadable image is skipped. The cancel key or closing the window returns
// engine.ErrAborted.
func (rt *Runtime) ShowSplash(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	tex, err := img.LoadTexture(rt.renderer, path)
	if err != nil {
		return nil
	}
	defer tex.Destroy()

	tw, th, _ := tex.Size()
	dst := sdl.FRect{
		X: (float32(rt.width) - tw) / 2,
		Y: (float32(rt.height) - th) / 2,
		W: tw,
		H: th,
	}
	rt.clear()
	rt.renderer.RenderTexture(tex, nil, &dst)
	rt.renderer.Present()

	for {
		var ev sdl.Event
		for sdl.PollEvent(&ev) {
			name := rt.handle(&ev)
			if rt.aborted {
				return engine.ErrAborted
			}
			if name != "" {
				return nil
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		sdl.Delay(1)
	}
}
