// Package cadence defines the target running cadences and their tempo
// acceptance bands.
package cadence

// Options are the selectable target cadences in steps per minute.
var Options = []int{140, 150, 160, 170, 180, 190}

// BandWidth is how far above the target cadence a tempo may sit and still
// match: a cadence of 160 accepts tempos in [160, 169].
const BandWidth = 9

// Band is an inclusive tempo acceptance range in BPM.
type Band struct {
	Min float64
	Max float64
}

// BandFor returns the acceptance band for a target cadence.
func BandFor(bpm int) Band {
	return Band{Min: float64(bpm), Max: float64(bpm + BandWidth)}
}

// Contains reports whether a tempo falls inside the band, inclusive at both
// edges.
func (b Band) Contains(tempo float64) bool {
	return tempo >= b.Min && tempo <= b.Max
}
