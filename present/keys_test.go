package present

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"Escape":       "escape",
		"Space":        "space",
		"1":            "1",
		"Keypad +":     "num_add",
		"Keypad 1":     "num_1",
		"Keypad -":     "num_subtract",
		"Keypad Enter": "num_enter",
		" A ":          "a",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeKey(in), in)
	}
}

func TestKeySet(t *testing.T) {
	set := keySet([]string{"1", "2"})
	assert.True(t, set["1"])
	assert.True(t, set["2"])
	assert.False(t, set["3"])
}

func TestClassifyKey(t *testing.T) {
	response := keySet([]string{"1", "2", "3", "4"})

	assert.Equal(t, keyPress{Name: "1", Response: true}, classifyKey("1", false, "escape", response))
	assert.Equal(t, keyPress{Name: "escape", Abort: true}, classifyKey("Escape", false, "escape", response))
	assert.Equal(t, keyPress{Name: "space"}, classifyKey("Space", false, "escape", response))
	assert.Equal(t, keyPress{Name: "num_add"}, classifyKey("Keypad +", false, "escape", response))
}

func TestClassifyKeyDropsAutoRepeat(t *testing.T) {
	response := keySet([]string{"1"})

	// A held key: one press followed by repeats.
	var presses []string
	for i, repeat := range []bool{false, true, true, true} {
		p := classifyKey("1", repeat, "escape", response)
		if p.Response {
			presses = append(presses, p.Name)
		}
		if i > 0 {
			assert.Zero(t, p)
		}
	}
	assert.Equal(t, []string{"1"}, presses)

	// A held space on the experimenter screen must not reach the trigger
	// gate as a fresh press.
	assert.Empty(t, classifyKey("Space", true, "escape", response).Name)
	assert.False(t, classifyKey("Escape", true, "escape", response).Abort)
}
