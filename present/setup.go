package present

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"

	"github.com/hgrotzin/language-localizer/config"
	"github.com/hgrotzin/language-localizer/trial"
)

// Choice is what the experimenter filled in on the setup dialog.
type Choice struct {
	Participant string
	Mode        trial.Mode
}

// ErrSetupCancelled is returned when the setup window is closed without
// starting a session.
var ErrSetupCancelled = errors.New("setup cancelled")

var (
	setupBlack = sdl.Color{R: 0, G: 0, B: 0, A: 255}
	setupWhite = sdl.Color{R: 255, G: 255, B: 255, A: 255}
)

type field int

const (
	fieldNone field = iota - 1
	fieldParticipant
	fieldStimuli
	fieldOutput
)

type setupForm struct {
	cfg         *config.Config
	participant string
	mode        trial.Mode
	focus       field
	message     string
}

func (f *setupForm) target() *string {
	switch f.focus {
	case fieldParticipant:
		return &f.participant
	case fieldStimuli:
		return &f.cfg.StimuliDir
	case fieldOutput:
		return &f.cfg.OutputDir
	}
	return nil
}

func (f *setupForm) value(fl field) string {
	switch fl {
	case fieldParticipant:
		return f.participant
	case fieldStimuli:
		return f.cfg.StimuliDir
	case fieldOutput:
		return f.cfg.OutputDir
	}
	return ""
}

// RunSetup opens a small window asking for the participant id, the run mode
// and the directories. On Start the edited cfg is written to the cache file.
func RunSetup(cfg *config.Config) (Choice, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return Choice{}, fmt.Errorf("SDL_Init: %w", err)
	}
	defer sdl.Quit()

	if err := ttf.Init(); err != nil {
		return Choice{}, fmt.Errorf("TTF_Init: %w", err)
	}
	defer ttf.Quit()

	window, renderer, err := sdl.CreateWindowAndRenderer(cfg.ExperimentName+" setup", 800, 520, 0)
	if err != nil {
		return Choice{}, fmt.Errorf("create window: %w", err)
	}
	defer func() { window.Destroy() }()
	defer func() { renderer.Destroy() }()

	fontPath := FindFont(cfg.FontFile)
	if fontPath == "" {
		return Choice{}, errors.New("no usable font found for setup window")
	}
	font, err := ttf.OpenFont(fontPath, 18)
	if err != nil {
		return Choice{}, fmt.Errorf("load font %s: %w", fontPath, err)
	}
	defer func() { font.Close() }()

	form := &setupForm{cfg: cfg, mode: trial.Synchronized, focus: fieldParticipant}

	window.StartTextInput()
	defer window.StopTextInput()

	for {
		var e sdl.Event
		for sdl.PollEvent(&e) {
			switch e.Type {
			case sdl.EVENT_QUIT:
				return Choice{}, ErrSetupCancelled
			case sdl.EVENT_MOUSE_BUTTON_DOWN:
				me := e.MouseButtonEvent()
				if form.click(window, me.X, me.Y) {
					if err := cfg.SaveCache(); err != nil {
						return Choice{}, err
					}
					return Choice{Participant: strings.TrimSpace(form.participant), Mode: form.mode}, nil
				}
			case sdl.EVENT_TEXT_INPUT:
				if t := form.target(); t != nil {
					*t += e.TextInputEvent().Text
				}
			case sdl.EVENT_KEY_DOWN:
				if e.KeyboardEvent().Key == sdl.K_BACKSPACE {
					if t := form.target(); t != nil && len(*t) > 0 {
						*t = (*t)[:len(*t)-1]
					}
				}
			}
		}

		form.draw(renderer, font)
		renderer.Present()
		sdl.Delay(10)
	}
}

// click handles a mouse press and reports whether Start was accepted.
func (f *setupForm) click(window *sdl.Window, mx, my float32) bool {
	in := func(x, y, w, h float32) bool {
		return mx >= x && mx <= x+w && my >= y && my <= y+h
	}

	f.focus = fieldNone
	for fl := fieldParticipant; fl <= fieldOutput; fl++ {
		if in(50, fieldY(fl), 650, 30) {
			f.focus = fl
		}
	}

	switch {
	case in(710, fieldY(fieldStimuli), 70, 30):
		cb := sdl.NewDialogFileCallback(func(files []string, _ int32) {
			if len(files) > 0 {
				f.cfg.StimuliDir = files[0]
			}
		})
		sdl.ShowOpenFolderDialog(cb, window, "", false)
	case in(710, fieldY(fieldOutput), 70, 30):
		cb := sdl.NewDialogFileCallback(func(files []string, _ int32) {
			if len(files) > 0 {
				f.cfg.OutputDir = files[0]
			}
		})
		sdl.ShowOpenFolderDialog(cb, window, "", false)
	case in(50, 260, 300, 30):
		f.mode = trial.Synchronized
	case in(50, 300, 300, 30):
		f.mode = trial.Standalone
	case in(50, 360, 300, 30):
		f.cfg.Fullscreen = !f.cfg.Fullscreen
	case in(350, 440, 100, 40):
		if strings.TrimSpace(f.participant) == "" {
			f.message = "Participant ID is required"
			return false
		}
		return true
	}
	return false
}

func fieldY(fl field) float32 {
	return float32(50 + int(fl)*70)
}

func (f *setupForm) draw(r *sdl.Renderer, font *ttf.Font) {
	r.SetDrawColor(240, 240, 240, 255)
	r.Clear()

	labels := []string{"Participant ID:", "Stimuli directory:", "Output directory:"}
	for fl := fieldParticipant; fl <= fieldOutput; fl++ {
		y := fieldY(fl)
		drawLabel(r, font, labels[fl], 50, y-30, setupBlack)

		r.SetDrawColor(255, 255, 255, 255)
		box := sdl.FRect{X: 50, Y: y, W: 650, H: 30}
		r.RenderFillRect(&box)
		if f.focus == fl {
			r.SetDrawColor(0, 120, 255, 255)
		} else {
			r.SetDrawColor(180, 180, 180, 255)
		}
		r.RenderRect(&box)
		if v := f.value(fl); v != "" {
			drawLabel(r, font, v, 55, y+5, setupBlack)
		}

		if fl != fieldParticipant {
			r.SetDrawColor(200, 200, 200, 255)
			btn := sdl.FRect{X: 710, Y: y, W: 70, H: 30}
			r.RenderFillRect(&btn)
			r.SetDrawColor(0, 0, 0, 255)
			r.RenderRect(&btn)
			drawLabel(r, font, "...", 735, y+5, setupBlack)
		}
	}

	drawCheck(r, font, 260, f.mode == trial.Synchronized, "Scanner run (synchronized)")
	drawCheck(r, font, 300, f.mode == trial.Standalone, "Backup run (standalone)")
	drawCheck(r, font, 360, f.cfg.Fullscreen, "Fullscreen mode")

	if f.message != "" {
		drawLabel(r, font, f.message, 50, 400, sdl.Color{R: 200, G: 0, B: 0, A: 255})
	}

	r.SetDrawColor(0, 150, 0, 255)
	start := sdl.FRect{X: 350, Y: 440, W: 100, H: 40}
	r.RenderFillRect(&start)
	drawLabel(r, font, "START", 375, 450, setupWhite)
}

func drawCheck(r *sdl.Renderer, font *ttf.Font, y float32, on bool, label string) {
	r.SetDrawColor(255, 255, 255, 255)
	box := sdl.FRect{X: 50, Y: y, W: 20, H: 20}
	r.RenderFillRect(&box)
	r.SetDrawColor(0, 0, 0, 255)
	r.RenderRect(&box)
	if on {
		mark := sdl.FRect{X: 54, Y: y + 4, W: 12, H: 12}
		r.SetDrawColor(0, 150, 0, 255)
		r.RenderFillRect(&mark)
	}
	drawLabel(r, font, label, 80, y, setupBlack)
}

func drawLabel(r *sdl.Renderer, font *ttf.Font, text string, x, y float32, c sdl.Color) {
	surf, err := font.RenderTextBlended(text, c)
	if err != nil || surf == nil {
		return
	}
	defer surf.Destroy()
	tex, err := r.CreateTextureFromSurface(surf)
	if err != nil {
		return
	}
	defer tex.Destroy()
	dst := sdl.FRect{X: x, Y: y, W: float32(surf.W), H: float32(surf.H)}
	r.RenderTexture(tex, nil, &dst)
}
