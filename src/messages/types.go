package messages

import (
	"encoding/json"
	"errors"
	"fmt"

	"screenshots/src/display"
	"screenshots/src/lang"
)

// ErrUnknownType is returned by Decode for envelopes it cannot map.
var ErrUnknownType = errors.New("unknown message type")

// Message is the base interface for all host⇄surface messages
type Message interface {
	Type() string
}

// MessageType constants for type identification
const (
	TypeReady            = "ready"
	TypeCapture          = "capture"
	TypeSetLanguage      = "setLanguage"
	TypeReset            = "reset"
	TypeWindow           = "window"
	TypeSaveDialog       = "saveDialog"
	TypeSaveDialogResult = "saveDialogResult"
	TypeOK               = "ok"
	TypeCancel           = "cancel"
	TypeSave             = "save"
)

// Bounds is the user's selection inside the captured frame, in logical pixels.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SelectionData accompanies ok and save. A nil Bounds means the full frame.
type SelectionData struct {
	Bounds  *Bounds         `json:"bounds"`
	Display display.Display `json:"display"`
}

// Ready - sent once by the surface when it has finished bootstrapping
type Ready struct{}

func (Ready) Type() string { return TypeReady }

// Capture - starts a session on the surface with this frame
type Capture struct {
	// Display is in device pixels; the surface sizes itself to
	// Width/ScaleFactor by Height/ScaleFactor.
	Display display.Display `json:"display"`
	Image   string          `json:"image"` // data URL
}

func (Capture) Type() string { return TypeCapture }

// SetLanguage - patches the surface's UI strings
type SetLanguage struct {
	Lang lang.Lang `json:"lang"`
}

func (SetLanguage) Type() string { return TypeSetLanguage }

// Reset - clears selection and editor state on the surface
type Reset struct{}

func (Reset) Type() string { return TypeReset }

// Window operations the surface applies to its native overlay window.
const (
	OpSetResizable              = "setResizable"
	OpSetAlwaysOnTop            = "setAlwaysOnTop"
	OpSetVisibleOnAllWorkspaces = "setVisibleOnAllWorkspaces"
	OpSetKiosk                  = "setKiosk"
	OpSetBounds                 = "setBounds"
	OpShow                      = "show"
	OpHide                      = "hide"
	OpBlur                      = "blur"
	OpReload                    = "reload"
)

// Rect is a window rectangle in logical pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowCommand - one operation on the overlay window
type WindowCommand struct {
	Op     string `json:"op"`
	Flag   bool   `json:"flag,omitempty"`
	Level  string `json:"level,omitempty"`
	Bounds *Rect  `json:"bounds,omitempty"`
}

func (WindowCommand) Type() string { return TypeWindow }

// SaveDialog - asks the surface to prompt for a destination path
type SaveDialog struct {
	ID          string `json:"id"`
	DefaultPath string `json:"defaultPath"`
}

func (SaveDialog) Type() string { return TypeSaveDialog }

// SaveDialogResult - the surface's answer to SaveDialog
type SaveDialogResult struct {
	ID       string `json:"id"`
	Canceled bool   `json:"canceled"`
	FilePath string `json:"filePath"`
}

func (SaveDialogResult) Type() string { return TypeSaveDialogResult }

// OK - the user accepted a region; Buffer is PNG bytes
type OK struct {
	Buffer []byte        `json:"buffer"`
	Data   SelectionData `json:"data"`
}

func (OK) Type() string { return TypeOK }

// Cancel - the user aborted the session
type Cancel struct{}

func (Cancel) Type() string { return TypeCancel }

// Save - the user asked to save the region to a file
type Save struct {
	Buffer []byte        `json:"buffer"`
	Data   SelectionData `json:"data"`
}

func (Save) Type() string { return TypeSave }

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode wraps msg in a {"type","payload"} envelope.
func Encode(msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Type(), err)
	}
	return json.Marshal(envelope{Type: msg.Type(), Payload: payload})
}

// Decode parses an envelope into its concrete message.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	var msg Message
	switch env.Type {
	case TypeReady:
		msg = &Ready{}
	case TypeCapture:
		msg = &Capture{}
	case TypeSetLanguage:
		msg = &SetLanguage{}
	case TypeReset:
		msg = &Reset{}
	case TypeWindow:
		msg = &WindowCommand{}
	case TypeSaveDialog:
		msg = &SaveDialog{}
	case TypeSaveDialogResult:
		msg = &SaveDialogResult{}
	case TypeOK:
		msg = &OK{}
	case TypeCancel:
		msg = &Cancel{}
	case TypeSave:
		msg = &Save{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	if len(env.Payload) > 0 && string(env.Payload) != "null" {
		if err := json.Unmarshal(env.Payload, msg); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	}
	return deref(msg), nil
}

func deref(msg Message) Message {
	switch m := msg.(type) {
	case *Ready:
		return *m
	case *Capture:
		return *m
	case *SetLanguage:
		return *m
	case *Reset:
		return *m
	case *WindowCommand:
		return *m
	case *SaveDialog:
		return *m
	case *SaveDialogResult:
		return *m
	case *OK:
		return *m
	case *Cancel:
		return *m
	case *Save:
		return *m
	}
	return msg
}
