package present

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// FindFont returns preferred if it exists, else the first .ttf/.ttc in a
// local "fonts" directory, else a common system font. It returns "" when
// nothing is found.
func FindFont(preferred string) string {
	if preferred != "" {
		if _, err := os.Stat(preferred); err == nil {
			return preferred
		}
	}

	if entries, err := os.ReadDir("fonts"); err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(entry.Name())) {
			case ".ttf", ".ttc":
				return filepath.Join("fonts", entry.Name())
			}
		}
	}

	for _, p := range systemFonts() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func systemFonts() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{`C:\Windows\Fonts\arial.ttf`}
	case "darwin":
		return []string{"/System/Library/Fonts/Helvetica.ttc"}
	}
	return []string{
		"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	}
}
