package temporal

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHistoryWindowPrunesTrailingInterval(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hw := NewHistoryWindow(250 * time.Millisecond)

	for i := 0; i < 10; i++ {
		hw.Push(base.Add(time.Duration(i)*50*time.Millisecond), float64(i))
	}
	now := base.Add(450 * time.Millisecond)
	hw.Prune(now)

	// 200ms..450ms, the 200ms sample sits exactly on the boundary
	assert.Equal(t, []float64{4, 5, 6, 7, 8, 9}, hw.Values())
	assert.Equal(t, 6, hw.Len())
	assert.InDelta(t, 6.5, hw.Mean(), 1e-12)

	hw.Prune(now.Add(time.Second))
	assert.Equal(t, 0, hw.Len())
	assert.Equal(t, 0.0, hw.Mean())
}

func TestHistoryWindowIdenticalValuesAverageExactly(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hw := NewHistoryWindow(250 * time.Millisecond)

	const freq = 441.0 * 1.0000001
	for i := 0; i < 30; i++ {
		now := base.Add(time.Duration(i) * 16 * time.Millisecond)
		hw.Push(now, freq)
		hw.Prune(now)
	}
	assert.Equal(t, freq, hw.Mean())
}

func TestHistoryWindowClear(t *testing.T) {
	hw := NewHistoryWindow(time.Second)
	hw.Push(time.Now(), 1)
	hw.Clear()
	assert.Equal(t, 0, hw.Len())
	assert.Equal(t, time.Second, hw.Window())
}

func TestDynamicMarkFor(t *testing.T) {
	cases := []struct {
		db   float64
		want string
	}{
		{-100, "pp"},
		{-40.01, "pp"},
		{-40, "p"},
		{-30.5, "p"},
		{-30, "mp"},
		{-20, "mf"},
		{-10.1, "mf"},
		{-10, "f"},
		{-0.1, "f"},
		{0, "ff"},
		{6, "ff"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DynamicMarkFor(tc.db).String(), "%g dB", tc.db)
	}

	text, err := MezzoForte.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "mf", string(text))
	assert.Equal(t, "?", DynamicMark(9).String())

	var mark DynamicMark
	assert.NoError(t, mark.UnmarshalText([]byte("pp")))
	assert.Equal(t, Pianissimo, mark)
	assert.NoError(t, mark.UnmarshalText([]byte("ff")))
	assert.Equal(t, Fortissimo, mark)
	assert.Error(t, mark.UnmarshalText([]byte("sfz")))
}

func TestLoudnessDB(t *testing.T) {
	silent := make([]uint8, 1024)
	for i := range silent {
		silent[i] = 128
	}
	assert.Equal(t, -100.0, LoudnessDB(silent, 128, -100))

	// square wave at +-64 is half of full scale
	square := make([]uint8, 1024)
	for i := range square {
		if i%2 == 0 {
			square[i] = 192
		} else {
			square[i] = 64
		}
	}
	assert.InDelta(t, 20*math.Log10(0.5), LoudnessDB(square, 128, -100), 1e-9)

	tiny := make([]uint8, 1<<20)
	for i := range tiny {
		tiny[i] = 128
	}
	tiny[0] = 129
	assert.Equal(t, -100.0, LoudnessDB(tiny, 128, -100))
}
