package ui

// SliderSteps is how many arrow key presses cross a slider's full range.
const SliderSteps = 100

// Frame collects the widgets declared for one frame.
type Frame struct {
	ui      *Ui
	press   bool
	pressX  float64
	pressY  float64
	release bool
	nudge   int
}

// Label draws text with its top-left corner at (x, y).
func (f *Frame) Label(id WidgetID, x, y float64, text string) {
	f.ui.prims = append(f.ui.prims, Primitive{
		Widget: id,
		Kind:   PrimText,
		Rect:   Rect{X: x, Y: y},
		Color:  f.ui.theme.Text,
		Text:   text,
	})
}

// Image draws a mapped image scaled into r.
func (f *Frame) Image(id WidgetID, r Rect, img ImageID) {
	f.ui.prims = append(f.ui.prims, Primitive{
		Widget: id,
		Kind:   PrimImage,
		Rect:   r,
		Image:  img,
	})
}

// Slider draws a horizontal slider for value in [min, max]. When the
// user drags it, the new value is returned with changed set.
func (f *Frame) Slider(id WidgetID, r Rect, value, min, max float64) (float64, bool) {
	u := f.ui
	if f.press && u.captured == 0 && r.Contains(f.pressX, f.pressY) {
		u.captured = id
		u.active = id
	}
	if u.active == 0 {
		u.active = id
	}

	next := value
	switch {
	case u.captured == id && r.W > 0:
		pos := (u.mouse.x - r.X) / r.W
		if pos < 0 {
			pos = 0
		} else if pos > 1 {
			pos = 1
		}
		next = min + pos*(max-min)
	case u.captured == 0 && u.active == id && f.nudge != 0:
		next = value + float64(f.nudge)*(max-min)/SliderSteps
		if next < min {
			next = min
		} else if next > max {
			next = max
		}
		// One frame consumes the presses.
		f.nudge = 0
	}

	fill := u.theme.Fill
	if u.captured == id {
		fill = u.theme.FillActive
	}

	frac := 0.0
	if max > min {
		frac = (next - min) / (max - min)
	}
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}

	u.prims = append(u.prims,
		Primitive{Widget: id, Kind: PrimRect, Rect: r, Color: u.theme.Track},
		Primitive{Widget: id, Kind: PrimRect, Rect: Rect{X: r.X, Y: r.Y, W: r.W * frac, H: r.H}, Color: fill},
	)

	return next, next != value
}
