package hotkey

import (
	"context"
	"fmt"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"

	"screenshots/src/logutil"
)

// Listen registers the global hotkey and calls trigger each time the whole
// combination is held down. It returns once the hook is running; the hook
// stops when ctx ends.
func Listen(ctx context.Context, hotkeyConfig string, trigger func()) error {
	log := logutil.WithComponent("hotkey")

	c, err := newCombo(hotkeyConfig)
	if err != nil {
		return err
	}
	log.Info().Str("hotkey", hotkeyConfig).Strs("keys", c.names()).Msg("hotkey listener configured")

	evChan := gohook.Start()
	if evChan == nil {
		return fmt.Errorf("hotkey %q: hook did not start", hotkeyConfig)
	}

	go func() {
		<-ctx.Done()
		gohook.End()
	}()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("hotkey goroutine panicked")
			}
		}()

		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				if c.press(ev.Rawcode) {
					log.Info().Str("hotkey", hotkeyConfig).Msg("hotkey activated")
					if trigger != nil {
						trigger()
					}
				}
			case gohook.KeyUp:
				c.release(ev.Rawcode)
			}
		}
		log.Debug().Msg("hook event channel closed")
	}()
	return nil
}

type comboKey struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// combo tracks which keys of a hotkey are currently held.
type combo struct {
	mu   sync.Mutex
	keys []comboKey
}

func newCombo(hotkeyConfig string) (*combo, error) {
	c := &combo{}
	for _, name := range parseHotkey(hotkeyConfig) {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			logutil.WithComponent("hotkey").Warn().Str("key", name).Msg("cannot map key to rawcodes, ignoring it")
			continue
		}
		c.keys = append(c.keys, comboKey{name: name, rawcodes: codes})
	}
	if len(c.keys) == 0 {
		return nil, fmt.Errorf("hotkey %q: no usable keys", hotkeyConfig)
	}
	return c, nil
}

func (c *combo) names() []string {
	out := make([]string, len(c.keys))
	for i, k := range c.keys {
		out[i] = k.name
	}
	return out
}

// press records a key down and reports whether it completed the combination.
// A completed combination is cleared so holding the keys fires once.
func (c *combo) press(rawcode uint16) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mark(rawcode, true)
	for _, k := range c.keys {
		if !k.pressed {
			return false
		}
	}
	for i := range c.keys {
		c.keys[i].pressed = false
	}
	return true
}

func (c *combo) release(rawcode uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mark(rawcode, false)
}

func (c *combo) mark(rawcode uint16, pressed bool) {
	for i := range c.keys {
		for _, code := range c.keys[i].rawcodes {
			if code == rawcode {
				c.keys[i].pressed = pressed
				break
			}
		}
	}
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+a" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			part = "ctrl"
		case "option":
			part = "alt"
		case "win", "super":
			part = "cmd"
		}
		keys = append(keys, part)
	}
	return keys
}

var namedKeys = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},

	"printscreen": {44}, // VK_SNAPSHOT
	"prtsc":       {44},
}

// keyNameToRawcodes maps a key name to its Windows virtual key rawcodes.
// Modifiers map to both their left and right variants.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if codes, ok := namedKeys[keyName]; ok {
		return codes
	}
	if len(keyName) == 1 {
		switch ch := keyName[0]; {
		case ch >= 'a' && ch <= 'z':
			return []uint16{uint16('A' + ch - 'a')}
		case ch >= '0' && ch <= '9':
			return []uint16{uint16(ch)}
		}
	}
	var n int
	if _, err := fmt.Sscanf(keyName, "f%d", &n); err == nil && n >= 1 && n <= 24 && keyName == fmt.Sprintf("f%d", n) {
		return []uint16{uint16(111 + n)} // VK_F1 is 112
	}
	return nil
}
