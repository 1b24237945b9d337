package pitchfilter

// Coefficients holds the transfer function coefficients for one second-order
// section. a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Section is a single second-order filter with coefficients and internal
// delay-line state.
type Section struct {
	Coefficients

	d0, d1 float64
}

// ProcessBlock filters a block of samples in place, carrying the delay line
// across calls.
func (s *Section) ProcessBlock(buf []float64) {
	b0, b1, b2 := s.B0, s.B1, s.B2
	a1, a2 := s.A1, s.A2
	d0, d1 := s.d0, s.d1

	for i, x := range buf {
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = y
	}

	s.d0, s.d1 = d0, d1
}

// Reset clears the delay line to zero.
func (s *Section) Reset() {
	s.d0 = 0
	s.d1 = 0
}

// Cascade is an ordered series of sections; each section's output feeds the
// next. It realizes one per-pitch band-pass filter.
type Cascade struct {
	sections []Section
}

// NewCascade creates a cascade from one or more coefficient sets with zero
// initial state.
func NewCascade(coeffs []Coefficients) *Cascade {
	c := &Cascade{sections: make([]Section, len(coeffs))}
	for i := range coeffs {
		c.sections[i].Coefficients = coeffs[i]
	}

	return c
}

// ProcessBlock filters a block in place through the full cascade.
func (c *Cascade) ProcessBlock(buf []float64) {
	for i := range c.sections {
		c.sections[i].ProcessBlock(buf)
	}
}

// Reset clears all section states.
func (c *Cascade) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}

// NumSections returns the number of second-order sections.
func (c *Cascade) NumSections() int {
	return len(c.sections)
}
