package temporal

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// DynamicMark is a discrete loudness label from pianissimo to fortissimo
type DynamicMark int

const (
	Pianissimo DynamicMark = iota
	Piano
	MezzoPiano
	MezzoForte
	Forte
	Fortissimo
)

func (d DynamicMark) String() string {
	switch d {
	case Pianissimo:
		return "pp"
	case Piano:
		return "p"
	case MezzoPiano:
		return "mp"
	case MezzoForte:
		return "mf"
	case Forte:
		return "f"
	case Fortissimo:
		return "ff"
	default:
		return "?"
	}
}

// MarshalText renders the mark as its musical abbreviation
func (d DynamicMark) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a musical abbreviation such as "mf"
func (d *DynamicMark) UnmarshalText(text []byte) error {
	for mark := Pianissimo; mark <= Fortissimo; mark++ {
		if mark.String() == string(text) {
			*d = mark
			return nil
		}
	}
	return fmt.Errorf("unknown dynamic mark %q", text)
}

// dynamicThresholds are the upper dBFS bounds of pp, p, mp, mf and f
var dynamicThresholds = [...]float64{-40, -30, -20, -10, 0}

// DynamicMarkFor maps a level in dBFS to a dynamic mark
func DynamicMarkFor(db float64) DynamicMark {
	for i, limit := range dynamicThresholds {
		if db < limit {
			return DynamicMark(i)
		}
	}
	return Fortissimo
}

// LoudnessDB returns the RMS level of an unsigned buffer in dB relative to
// full scale (midpoint), floored at floorDB so silence stays finite
func LoudnessDB(buffer []uint8, midpoint, floorDB float64) float64 {
	rms := common.RMS(common.CenteredBytes(buffer, midpoint))
	if rms <= 0 {
		return floorDB
	}
	return math.Max(floorDB, 20*math.Log10(rms))
}
