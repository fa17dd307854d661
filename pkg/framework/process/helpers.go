package process

// ProcessChannels pairs input and output channels and calls fn for each
// pair. Output channels without a matching input are zeroed.
func (c *Context) ProcessChannels(fn func(ch int, input, output []float32)) {
	numChannels := c.NumChannels()

	for ch := 0; ch < numChannels; ch++ {
		fn(ch, c.Input[ch], c.Output[ch])
	}
	for ch := numChannels; ch < len(c.Output); ch++ {
		clear(c.Output[ch])
	}
}

// NumChannels returns the minimum of input and output channels
func (c *Context) NumChannels() int {
	numChannels := c.NumInputChannels()
	if c.NumOutputChannels() < numChannels {
		numChannels = c.NumOutputChannels()
	}
	return numChannels
}
