package distortion

// MinThreshold is the smallest threshold a Clipper accepts. It keeps the
// normalising division finite.
const MinThreshold = 0.01

// ProcessSample hard-clips input at ±threshold, normalises the result to
// ±1 and scales it by gain. threshold must be positive.
func ProcessSample(input, threshold, gain float32) float32 {
	if input >= 0 {
		return min(input, threshold) / threshold * gain
	}
	return max(input, -threshold) / threshold * gain
}

// Clipper applies ProcessSample over whole buffers with a fixed threshold
// and gain. It holds no per-sample state and never allocates.
type Clipper struct {
	threshold float32
	gain      float32
}

// NewClipper creates a clipper with unity threshold and gain
func NewClipper() *Clipper {
	return &Clipper{
		threshold: 1.0,
		gain:      1.0,
	}
}

// SetThreshold sets the clipping threshold, raised to MinThreshold if needed
func (c *Clipper) SetThreshold(threshold float32) {
	if !(threshold >= MinThreshold) {
		threshold = MinThreshold
	}
	c.threshold = threshold
}

// SetGain sets the output gain applied after normalisation
func (c *Clipper) SetGain(gain float32) {
	c.gain = gain
}

// Threshold returns the current threshold
func (c *Clipper) Threshold() float32 {
	return c.threshold
}

// Gain returns the current gain
func (c *Clipper) Gain() float32 {
	return c.gain
}

// Process clips input into output. Only the overlapping length is written.
func (c *Clipper) Process(input, output []float32) {
	n := len(input)
	if len(output) < n {
		n = len(output)
	}
	threshold, gain := c.threshold, c.gain
	for i := 0; i < n; i++ {
		output[i] = ProcessSample(input[i], threshold, gain)
	}
}

// ProcessInPlace clips buffer in place
func (c *Clipper) ProcessInPlace(buffer []float32) {
	c.Process(buffer, buffer)
}
