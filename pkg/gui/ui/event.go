package ui

// EventKind classifies UI input.
type EventKind uint8

// Input kinds understood by widgets.
const (
	EventMouseMove EventKind = iota + 1
	EventPress
	EventRelease
	EventKeyPress
	EventKeyRelease
	EventResize
	EventFocus
	EventRedraw
)

// MouseButton identifies a pointer button.
type MouseButton uint8

// Pointer buttons.
const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// Key identifies a keyboard key the UI cares about.
type Key uint16

// Keys.
const (
	KeyUnknown Key = iota
	KeyEscape
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
)

// Event is a backend-independent input event.
type Event struct {
	Kind    EventKind
	X, Y    float64
	Button  MouseButton
	Key     Key
	Width   float64
	Height  float64
	Focused bool
}
