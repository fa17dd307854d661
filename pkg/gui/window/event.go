package window

// EventKind classifies raw backend events.
type EventKind uint8

// Raw event kinds.
const (
	EventUnknown EventKind = iota
	EventClosed
	EventKeyPressed
	EventKeyReleased
	EventMouseMoved
	EventMouseButtonPressed
	EventMouseButtonReleased
	EventResized
	EventFocus
	EventExposed
)

var eventKindNames = [...]string{
	EventUnknown:             "Unknown",
	EventClosed:              "Closed",
	EventKeyPressed:          "KeyPressed",
	EventKeyReleased:         "KeyReleased",
	EventMouseMoved:          "MouseMoved",
	EventMouseButtonPressed:  "MouseButtonPressed",
	EventMouseButtonReleased: "MouseButtonReleased",
	EventResized:             "Resized",
	EventFocus:               "Focus",
	EventExposed:             "Exposed",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "Unknown"
}

// Key is a backend-independent key code.
type Key uint16

// Keys the editor distinguishes.
const (
	KeyOther Key = iota
	KeyEscape
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
)

// Button is a pointer button.
type Button uint8

// Pointer buttons, numbered as on X11.
const (
	ButtonNone   Button = 0
	ButtonLeft   Button = 1
	ButtonMiddle Button = 2
	ButtonRight  Button = 3
)

// Event is one raw event from a Surface.
type Event struct {
	Kind    EventKind
	Key     Key
	Button  Button
	X, Y    int
	Width   int
	Height  int
	Focused bool
}
