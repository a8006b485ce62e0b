package present

import "strings"

var keypadNames = map[string]string{
	"+":     "add",
	"-":     "subtract",
	"*":     "multiply",
	"/":     "divide",
	".":     "decimal",
	"enter": "enter",
}

// NormalizeKey turns an SDL key name into the short lowercase names used in
// the configuration: "Escape" -> "escape", "Keypad +" -> "num_add",
// "Keypad 1" -> "num_1".
func NormalizeKey(sdlName string) string {
	name := strings.ToLower(strings.TrimSpace(sdlName))
	if rest, ok := strings.CutPrefix(name, "keypad "); ok {
		if n, ok := keypadNames[rest]; ok {
			return "num_" + n
		}
		return "num_" + rest
	}
	return name
}

// keyPress is what one keyboard event means to a session.
type keyPress struct {
	Name     string
	Response bool
	Abort    bool
}

// classifyKey maps a key-down event to a keyPress. Auto-repeat events from a
// held key are not presses and yield the zero keyPress.
func classifyKey(sdlName string, repeat bool, abortKey string, response map[string]bool) keyPress {
	if repeat {
		return keyPress{}
	}
	name := NormalizeKey(sdlName)
	return keyPress{
		Name:     name,
		Abort:    name == abortKey,
		Response: name != abortKey && response[name],
	}
}

func keySet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
