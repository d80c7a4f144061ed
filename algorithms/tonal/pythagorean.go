package tonal

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// fifthsOffset is each spelling's position on the circle of fifths relative to C
var fifthsOffset = [toneCount]int{
	ToneC:      0,
	ToneCSharp: 7,
	ToneDFlat:  -5,
	ToneD:      2,
	ToneDSharp: 9,
	ToneEFlat:  -3,
	ToneE:      4,
	ToneF:      -1,
	ToneFSharp: 6,
	ToneGFlat:  -6,
	ToneG:      1,
	ToneGSharp: 8,
	ToneAFlat:  -4,
	ToneA:      3,
	ToneASharp: 10,
	ToneBFlat:  -2,
	ToneB:      5,
}

// enharmonicPairs are the tones whose sharp and flat spellings land a
// Pythagorean comma apart, sharp spelling first
var enharmonicPairs = [][2]Tone{
	{ToneCSharp, ToneDFlat},
	{ToneDSharp, ToneEFlat},
	{ToneFSharp, ToneGFlat},
	{ToneGSharp, ToneAFlat},
	{ToneASharp, ToneBFlat},
}

// PythagoreanComma is the gap between twelve pure fifths and seven octaves, in cents
var PythagoreanComma = 1200 * math.Log2(531441.0/524288.0)

// FifthsOffset returns the tone's circle-of-fifths position relative to C
func FifthsOffset(t Tone) int {
	if !t.valid() {
		return 0
	}
	return fifthsOffset[t]
}

// EnharmonicPair returns the sharp/flat pair containing t, if any
func EnharmonicPair(t Tone) ([2]Tone, bool) {
	for _, pair := range enharmonicPairs {
		if pair[0] == t || pair[1] == t {
			return pair, true
		}
	}
	return [2]Tone{}, false
}

// PythagoreanRatio is the frequency ratio reached by steps pure fifths
// (negative steps go down), reduced into one octave [1, 2)
func PythagoreanRatio(steps int) float64 {
	ratio := 1.0
	for i := 0; i < abs(steps); i++ {
		if steps > 0 {
			ratio *= 3.0 / 2.0
		} else {
			ratio *= 2.0 / 3.0
		}
	}

	for ratio >= 2 {
		ratio /= 2
	}
	for ratio < 1 {
		ratio *= 2
	}
	return ratio
}

// PythagoreanFrequency tunes target by fifths from ref sounding at refFreq.
// The result lies in the octave [refFreq, 2*refFreq).
func PythagoreanFrequency(ref Tone, refFreq float64, target Tone) float64 {
	return refFreq * PythagoreanRatio(FifthsOffset(target)-FifthsOffset(ref))
}

// NearestOctave transposes freq by whole octaves to land closest to ref on a
// log-frequency scale
func NearestOctave(freq, ref float64) float64 {
	shift := math.Round(math.Log2(ref) - math.Log2(freq))
	return freq * math.Pow(2, shift)
}

// PythagoreanAlternative is one spelling's fifths-tuned frequency near the
// equal-tempered reference
type PythagoreanAlternative struct {
	Tone      Tone    `json:"-"`
	Name      string  `json:"name"`
	Frequency float64 `json:"frequency"` // Hz
	Cents     float64 `json:"cents"`     // Relative to the equal-tempered reference
}

// PythagoreanResult compares a note's equal-tempered pitch with Pythagorean tuning
type PythagoreanResult struct {
	Frequency    float64                  `json:"frequency"` // Own-spelling Pythagorean frequency (Hz)
	Cents        float64                  `json:"cents"`     // Relative to the equal-tempered reference
	Alternatives []PythagoreanAlternative `json:"alternatives"`
}

// PythagoreanAnalyzer tunes notes by pure fifths from A
type PythagoreanAnalyzer struct {
	A4       float64
	Notation Notation
}

// NewPythagoreanAnalyzer creates an analyzer anchored at A = a4 Hz
func NewPythagoreanAnalyzer(a4 float64, notation Notation) *PythagoreanAnalyzer {
	return &PythagoreanAnalyzer{A4: a4, Notation: notation}
}

// Analyze computes the Pythagorean counterpart of note. For the five
// enharmonically ambiguous tones both spellings are returned as alternatives,
// sharp first; otherwise Alternatives is empty.
func (pa *PythagoreanAnalyzer) Analyze(note NoteAssignment) (PythagoreanResult, error) {
	if !common.IsPositiveFinite(note.Reference) {
		return PythagoreanResult{}, fmt.Errorf("pythagorean analysis of %q: %w", note.Name, ErrInvalidFrequency)
	}

	own := pa.tuned(note.Tone, note.Reference)
	result := PythagoreanResult{
		Frequency:    own,
		Cents:        1200 * math.Log2(own/note.Reference),
		Alternatives: []PythagoreanAlternative{},
	}

	if pair, ok := EnharmonicPair(note.Tone); ok {
		for _, t := range pair {
			freq := pa.tuned(t, note.Reference)
			result.Alternatives = append(result.Alternatives, PythagoreanAlternative{
				Tone:      t,
				Name:      t.Name(pa.Notation),
				Frequency: freq,
				Cents:     1200 * math.Log2(freq/note.Reference),
			})
		}
	}

	return result, nil
}

func (pa *PythagoreanAnalyzer) tuned(t Tone, reference float64) float64 {
	return NearestOctave(PythagoreanFrequency(ToneA, pa.A4, t), reference)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
