package tonal

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// ErrInvalidFrequency is returned for non-positive or non-finite frequencies
var ErrInvalidFrequency = errors.New("frequency must be positive and finite")

// DefaultA4 is the equal-temperament reference pitch
const DefaultA4 = 440.0

// Tone is one of the 17 conventional spellings of the chromatic scale
type Tone int

const (
	ToneC Tone = iota
	ToneCSharp
	ToneDFlat
	ToneD
	ToneDSharp
	ToneEFlat
	ToneE
	ToneF
	ToneFSharp
	ToneGFlat
	ToneG
	ToneGSharp
	ToneAFlat
	ToneA
	ToneASharp
	ToneBFlat
	ToneB

	toneCount
)

// AllTones lists every spelling in ascending pitch order
var AllTones = []Tone{
	ToneC, ToneCSharp, ToneDFlat, ToneD, ToneDSharp, ToneEFlat, ToneE, ToneF,
	ToneFSharp, ToneGFlat, ToneG, ToneGSharp, ToneAFlat, ToneA, ToneASharp, ToneBFlat, ToneB,
}

// chromaticScale is the sharp-spelled 12-tone scale anchored at C
var chromaticScale = [12]Tone{
	ToneC, ToneCSharp, ToneD, ToneDSharp, ToneE, ToneF,
	ToneFSharp, ToneG, ToneGSharp, ToneA, ToneASharp, ToneB,
}

var toneInfo = [toneCount]struct {
	english    string
	german     string
	pitchClass int
}{
	ToneC:      {"C", "C", 0},
	ToneCSharp: {"C#", "Cis", 1},
	ToneDFlat:  {"Db", "Des", 1},
	ToneD:      {"D", "D", 2},
	ToneDSharp: {"D#", "Dis", 3},
	ToneEFlat:  {"Eb", "Es", 3},
	ToneE:      {"E", "E", 4},
	ToneF:      {"F", "F", 5},
	ToneFSharp: {"F#", "Fis", 6},
	ToneGFlat:  {"Gb", "Ges", 6},
	ToneG:      {"G", "G", 7},
	ToneGSharp: {"G#", "Gis", 8},
	ToneAFlat:  {"Ab", "As", 8},
	ToneA:      {"A", "A", 9},
	ToneASharp: {"A#", "Ais", 10},
	ToneBFlat:  {"Bb", "B", 10},
	ToneB:      {"B", "H", 11},
}

func (t Tone) valid() bool {
	return t >= 0 && t < toneCount
}

// String returns the English spelling
func (t Tone) String() string {
	return t.Name(English)
}

// Name spells the tone in the given notation
func (t Tone) Name(n Notation) string {
	if !t.valid() {
		return "?"
	}
	if n == German {
		return toneInfo[t].german
	}
	return toneInfo[t].english
}

// PitchClass returns the semitone index above C (0-11)
func (t Tone) PitchClass() int {
	if !t.valid() {
		return -1
	}
	return toneInfo[t].pitchClass
}

// Notation selects how tone names are spelled
type Notation int

const (
	// English spells B-flat as "Bb" and B as "B"
	English Notation = iota
	// German spells B-flat as "B", B as "H" and accidentals as -is/-es
	German
)

func (n Notation) String() string {
	if n == German {
		return "german"
	}
	return "english"
}

// ParseNotation accepts "english" or "german"
func ParseNotation(s string) (Notation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "english", "":
		return English, nil
	case "german":
		return German, nil
	default:
		return English, fmt.Errorf("unknown notation %q", s)
	}
}

// ParseTone resolves a spelling in notation n
func ParseTone(name string, n Notation) (Tone, error) {
	for _, t := range AllTones {
		if t.Name(n) == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown %s tone name %q", n, name)
}

// NoteAssignment is the nearest equal-tempered note to a frequency
type NoteAssignment struct {
	Tone            Tone    `json:"-"`
	Octave          int     `json:"octave"`
	Name            string  `json:"name"`      // Tone and octave, e.g. "A#4"
	Reference       float64 `json:"reference"` // Equal-tempered frequency of the note (Hz)
	Cents           float64 `json:"cents"`     // Deviation of the input from Reference, [-50, 50]
	SemitonesFromA4 int     `json:"semitones_from_a4"`
	MIDIKey         int     `json:"midi_key"`
}

// SimpleName returns the note name without octave
func (na NoteAssignment) SimpleName(n Notation) string {
	return na.Tone.Name(n)
}

// NoteMapper maps frequencies onto the 12-tone equal-tempered scale
type NoteMapper struct {
	A4       float64
	Notation Notation
}

// NewNoteMapper creates a mapper for reference pitch a4
func NewNoteMapper(a4 float64, notation Notation) *NoteMapper {
	return &NoteMapper{A4: a4, Notation: notation}
}

// Map returns the nearest note to freq, its reference frequency and the
// deviation in cents
func (m *NoteMapper) Map(freq float64) (NoteAssignment, error) {
	if !common.IsPositiveFinite(freq) {
		return NoteAssignment{}, fmt.Errorf("map %g Hz: %w", freq, ErrInvalidFrequency)
	}

	semitones := roundHalfUp(12 * math.Log2(freq/m.A4))
	reference := m.A4 * math.Pow(2, float64(semitones)/12)

	fromC := semitones + 9
	tone := chromaticScale[((fromC%12)+12)%12]
	octave := 4 + int(math.Floor(float64(fromC)/12))

	return NoteAssignment{
		Tone:            tone,
		Octave:          octave,
		Name:            tone.Name(m.Notation) + strconv.Itoa(octave),
		Reference:       reference,
		Cents:           common.Clamp(1200*math.Log2(freq/reference), -50, 50),
		SemitonesFromA4: semitones,
		MIDIKey:         69 + semitones,
	}, nil
}

// roundHalfUp sends exact quarter-tones to the upper note, so a reading
// sits at -50 cents rather than +50
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// Frequency returns the equal-tempered frequency of tone in octave
func (m *NoteMapper) Frequency(tone Tone, octave int) float64 {
	semitones := tone.PitchClass() + 12*(octave-4) - 9
	return m.A4 * math.Pow(2, float64(semitones)/12)
}

// ParseNote splits a name such as "A4", "Cis3" or "Bb-1" into tone and octave
func (m *NoteMapper) ParseNote(name string) (Tone, int, error) {
	name = strings.TrimSpace(name)
	split := strings.IndexFunc(name, func(r rune) bool {
		return r == '-' || (r >= '0' && r <= '9')
	})
	if split <= 0 {
		return 0, 0, fmt.Errorf("note %q needs a tone and an octave", name)
	}

	tone, err := ParseTone(name[:split], m.Notation)
	if err != nil {
		return 0, 0, err
	}
	octave, err := strconv.Atoi(name[split:])
	if err != nil {
		return 0, 0, fmt.Errorf("note %q has invalid octave: %w", name, err)
	}
	return tone, octave, nil
}

// GaugeAngle converts a cents deviation into a needle angle in radians,
// where ±100 cents is a quarter turn
func GaugeAngle(cents float64) float64 {
	return cents / 100 * (math.Pi / 2)
}
