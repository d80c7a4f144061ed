package tonal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPythagoreanRatio(t *testing.T) {
	assert.Equal(t, 1.0, PythagoreanRatio(0))
	assert.InDelta(t, 1.5, PythagoreanRatio(1), 1e-12)
	assert.InDelta(t, 4.0/3.0, PythagoreanRatio(-1), 1e-12)
	assert.InDelta(t, 9.0/8.0, PythagoreanRatio(2), 1e-12)
	assert.InDelta(t, 531441.0/524288.0, PythagoreanRatio(12), 1e-12)

	for steps := -12; steps <= 12; steps++ {
		r := PythagoreanRatio(steps)
		assert.GreaterOrEqual(t, r, 1.0, "steps %d", steps)
		assert.Less(t, r, 2.0, "steps %d", steps)
	}
}

func TestPythagoreanFrequency(t *testing.T) {
	assert.InDelta(t, 660, PythagoreanFrequency(ToneA, 440, ToneE), 1e-9)
	assert.InDelta(t, 495, PythagoreanFrequency(ToneA, 440, ToneB), 1e-9)
	assert.InDelta(t, 440*81.0/64.0, PythagoreanFrequency(ToneA, 440, ToneCSharp), 1e-9)
	assert.InDelta(t, 440, PythagoreanFrequency(ToneA, 440, ToneA), 1e-12)
}

func TestNearestOctave(t *testing.T) {
	assert.InDelta(t, 330, NearestOctave(660, 329.63), 1e-9)
	assert.InDelta(t, 1320, NearestOctave(660, 1318.5), 1e-9)
	assert.InDelta(t, 660, NearestOctave(660, 659.26), 1e-9)
	assert.InDelta(t, 41.25, NearestOctave(660, 41.2), 1e-9)
}

func TestAnalyzeNaturalNoteHasNoAlternatives(t *testing.T) {
	mapper := NewNoteMapper(DefaultA4, English)
	analyzer := NewPythagoreanAnalyzer(DefaultA4, English)

	a4, err := mapper.Map(440)
	require.NoError(t, err)
	res, err := analyzer.Analyze(a4)
	require.NoError(t, err)
	assert.InDelta(t, 440, res.Frequency, 1e-9)
	assert.InDelta(t, 0, res.Cents, 1e-9)
	assert.NotNil(t, res.Alternatives)
	assert.Empty(t, res.Alternatives)

	e4, err := mapper.Map(329.63)
	require.NoError(t, err)
	res, err = analyzer.Analyze(e4)
	require.NoError(t, err)
	assert.InDelta(t, 330, res.Frequency, 1e-9)
	assert.InDelta(t, 1.955, res.Cents, 0.01)
	assert.Empty(t, res.Alternatives)
}

func TestAnalyzeEnharmonicPairSpansComma(t *testing.T) {
	mapper := NewNoteMapper(DefaultA4, English)
	analyzer := NewPythagoreanAnalyzer(DefaultA4, English)

	assert.InDelta(t, 23.46, PythagoreanComma, 0.01)

	for _, pair := range enharmonicPairs {
		for octave := 1; octave <= 7; octave++ {
			note, err := mapper.Map(mapper.Frequency(pair[0], octave))
			require.NoError(t, err)
			require.Equal(t, pair[0], note.Tone)

			res, err := analyzer.Analyze(note)
			require.NoError(t, err)
			require.Len(t, res.Alternatives, 2)

			sharp, flat := res.Alternatives[0], res.Alternatives[1]
			assert.Equal(t, pair[0], sharp.Tone)
			assert.Equal(t, pair[1], flat.Tone)
			assert.Equal(t, pair[0].String(), sharp.Name)

			gap := 1200 * math.Log2(sharp.Frequency/flat.Frequency)
			assert.InDelta(t, 23.46, gap, 0.01, "%s%d", note.Name, octave)
			assert.InDelta(t, gap, sharp.Cents-flat.Cents, 1e-9)

			// both spellings sit within a semitone of the tempered note
			assert.Less(t, math.Abs(sharp.Cents), 50.0)
			assert.Less(t, math.Abs(flat.Cents), 50.0)
			assert.InDelta(t, sharp.Cents, res.Cents, 1e-9)
		}
	}
}

func TestAnalyzeGermanNames(t *testing.T) {
	note, err := NewNoteMapper(DefaultA4, German).Map(466.16)
	require.NoError(t, err)

	res, err := NewPythagoreanAnalyzer(DefaultA4, German).Analyze(note)
	require.NoError(t, err)
	require.Len(t, res.Alternatives, 2)
	assert.Equal(t, "Ais", res.Alternatives[0].Name)
	assert.Equal(t, "B", res.Alternatives[1].Name)
}

func TestAnalyzeRejectsInvalidReference(t *testing.T) {
	_, err := NewPythagoreanAnalyzer(DefaultA4, English).Analyze(NoteAssignment{Name: "A4"})
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}

func TestEnharmonicPairLookup(t *testing.T) {
	pair, ok := EnharmonicPair(ToneEFlat)
	require.True(t, ok)
	assert.Equal(t, [2]Tone{ToneDSharp, ToneEFlat}, pair)

	_, ok = EnharmonicPair(ToneE)
	assert.False(t, ok)

	assert.Equal(t, 10, FifthsOffset(ToneASharp))
	assert.Equal(t, -6, FifthsOffset(ToneGFlat))
}
