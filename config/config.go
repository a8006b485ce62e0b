package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CacheFile remembers the last setup between sessions in the working
// directory.
const CacheFile = ".langloc.yaml"

type Config struct {
	ExperimentName string `yaml:"experiment_name"`
	ScannerTable   string `yaml:"scanner_table"`
	BackupTable    string `yaml:"backup_table"`
	StimuliDir     string `yaml:"stimuli_dir"`
	OutputDir      string `yaml:"output_dir"`
	Database       string `yaml:"database,omitempty"`

	StartSplash string `yaml:"start_splash,omitempty"`
	EndSplash   string `yaml:"end_splash,omitempty"`
	FontFile    string `yaml:"font_file,omitempty"`
	FontSize    int    `yaml:"font_size"`

	ScreenWidth   int    `yaml:"screen_width"`
	ScreenHeight  int    `yaml:"screen_height"`
	Fullscreen    bool   `yaml:"fullscreen"`
	VSync         bool   `yaml:"vsync"`
	BGColor       string `yaml:"bg_color"`
	TextColor     string `yaml:"text_color"`
	FixationColor string `yaml:"fixation_color"`

	Keys Keys `yaml:"keys"`
	Text Text `yaml:"text"`

	TriggerPort string `yaml:"trigger_port,omitempty"`
	TriggerBaud int    `yaml:"trigger_baud"`
	TriggerByte string `yaml:"trigger_byte"`

	DLPDevice string `yaml:"dlp_device,omitempty"`
	DLPLine   string `yaml:"dlp_line"`
}

// Keys are normalised key names (see present.NormalizeKey).
type Keys struct {
	Response     []string `yaml:"response"`
	Abort        string   `yaml:"abort"`
	Instructions []string `yaml:"instructions"`
	Experimenter []string `yaml:"experimenter"`
	Trigger      []string `yaml:"trigger"`
	Thanks       []string `yaml:"thanks"`
}

type Text struct {
	Instructions string `yaml:"instructions"`
	Experimenter string `yaml:"experimenter"`
	Trigger      string `yaml:"trigger"`
	Thanks       string `yaml:"thanks"`
}

func Default() *Config {
	return &Config{
		ExperimentName: "LanguageLocalizer",
		ScannerTable:   "OrderAB.csv",
		BackupTable:    "OrderB.csv",
		OutputDir:      "tfMRI_output",
		FontSize:       32,
		ScreenWidth:    1920,
		ScreenHeight:   1080,
		Fullscreen:     true,
		VSync:          true,
		BGColor:        "0,0,0,255",
		TextColor:      "255,255,255,255",
		FixationColor:  "255,255,255,255",
		Keys: Keys{
			Response:     []string{"1", "2", "3", "4"},
			Abort:        "escape",
			Instructions: []string{"1", "2", "3", "4", "space"},
			Experimenter: []string{"space"},
			Trigger:      []string{"num_add", "+", "space"},
			Thanks:       []string{"space"},
		},
		Text: Text{
			Instructions: "Please listen to the following audio clips\nand press any button at the end of each clip.",
			Experimenter: "Waiting for the experimenter.",
			Trigger:      "Waiting for the scanner.",
			Thanks:       "Thanks!",
		},
		TriggerBaud: 115200,
		TriggerByte: "5",
		DLPLine:     "2",
	}
}

// Load reads a YAML file over the defaults, so a file only needs the
// settings it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) Save(path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadCache overlays the cached setup, if any. A missing cache is not an
// error; an unreadable one leaves cfg untouched.
func (cfg *Config) LoadCache() error {
	data, err := os.ReadFile(CacheFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cache: %w", err)
	}
	next := *cfg
	if err := yaml.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("parse cache %s: %w", CacheFile, err)
	}
	*cfg = next
	return nil
}

func (cfg *Config) SaveCache() error {
	return cfg.Save(CacheFile)
}

func (cfg *Config) Validate() error {
	var errs []error
	if cfg.ScannerTable == "" || cfg.BackupTable == "" {
		errs = append(errs, errors.New("scanner_table and backup_table are required"))
	}
	if cfg.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("font_size must be positive, got %d", cfg.FontSize))
	}
	if cfg.ScreenWidth <= 0 || cfg.ScreenHeight <= 0 {
		errs = append(errs, fmt.Errorf("invalid screen size %dx%d", cfg.ScreenWidth, cfg.ScreenHeight))
	}
	for name, s := range map[string]string{"bg_color": cfg.BGColor, "text_color": cfg.TextColor, "fixation_color": cfg.FixationColor} {
		if _, err := ParseRGBA(s); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if len(cfg.Keys.Response) == 0 {
		errs = append(errs, errors.New("keys.response must not be empty"))
	}
	if cfg.Keys.Abort == "" {
		errs = append(errs, errors.New("keys.abort is required"))
	} else if slices.Contains(cfg.Keys.Response, cfg.Keys.Abort) {
		errs = append(errs, fmt.Errorf("abort key %q is also a response key", cfg.Keys.Abort))
	}
	if len(cfg.Keys.Experimenter) == 0 || len(cfg.Keys.Trigger) == 0 {
		errs = append(errs, errors.New("keys.experimenter and keys.trigger must not be empty"))
	}
	if cfg.TriggerPort != "" && len(cfg.TriggerByte) != 1 {
		errs = append(errs, fmt.Errorf("trigger_byte must be a single character, got %q", cfg.TriggerByte))
	}
	if cfg.DLPDevice != "" && (len(cfg.DLPLine) != 1 || !strings.Contains("12345678", cfg.DLPLine)) {
		errs = append(errs, fmt.Errorf("dlp_line must be 1-8, got %q", cfg.DLPLine))
	}
	return errors.Join(errs...)
}

// ParseRGBA reads "R,G,B" or "R,G,B,A". Alpha defaults to 255.
func ParseRGBA(s string) ([4]uint8, error) {
	var c [4]uint8
	parts := strings.Split(s, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return c, fmt.Errorf("color %q: want R,G,B or R,G,B,A", s)
	}
	c[3] = 255
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > 255 {
			return c, fmt.Errorf("color %q: component %d out of range", s, i+1)
		}
		c[i] = uint8(v)
	}
	return c, nil
}
