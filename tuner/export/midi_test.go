package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/RyanBlaney/sonido-tuner/algorithms/temporal"
	"github.com/RyanBlaney/sonido-tuner/tuner"
)

var origin = time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC)

func measurement(ms int, key int, name string, cents float64, mark temporal.DynamicMark) *tuner.Measurement {
	return &tuner.Measurement{
		Timestamp: origin.Add(time.Duration(ms) * time.Millisecond),
		Note:      name,
		MIDIKey:   key,
		Cents:     cents,
		Dynamic:   mark,
	}
}

func TestVelocity(t *testing.T) {
	assert.Equal(t, uint8(32), Velocity(temporal.Pianissimo))
	assert.Equal(t, uint8(80), Velocity(temporal.MezzoForte))
	assert.Equal(t, uint8(112), Velocity(temporal.Fortissimo))
	assert.Equal(t, uint8(112), Velocity(temporal.DynamicMark(42)))
}

func TestSegment(t *testing.T) {
	ms := []*tuner.Measurement{
		measurement(0, 69, "A4", 2, temporal.MezzoPiano),
		measurement(260, 69, "A4", 4, temporal.Forte),
		measurement(520, 71, "B4", -3, temporal.MezzoForte),
		measurement(780, 71, "B4", -1, temporal.MezzoForte),
		// gap: B4 ends 300ms after its last reading
		measurement(2000, 71, "B4", 0, temporal.Piano),
	}

	events := Segment(ms, 300*time.Millisecond)
	require.Len(t, events, 3)

	assert.Equal(t, NoteEvent{
		Key: 69, Name: "A4", Start: 0, End: 520 * time.Millisecond,
		Velocity: 96, MeanCents: 3,
	}, events[0])
	assert.Equal(t, NoteEvent{
		Key: 71, Name: "B4", Start: 520 * time.Millisecond, End: 1080 * time.Millisecond,
		Velocity: 80, MeanCents: -2,
	}, events[1])
	assert.Equal(t, 2000*time.Millisecond, events[2].Start)
	assert.Equal(t, 300*time.Millisecond, events[2].Duration())
	assert.Equal(t, uint8(48), events[2].Velocity)
}

func TestSegmentEdgeCases(t *testing.T) {
	assert.Empty(t, Segment(nil, time.Second))

	events := Segment([]*tuner.Measurement{
		measurement(0, 200, "?", 0, temporal.Forte),
		measurement(100, 60, "C4", 0, temporal.Forte),
	}, time.Second)
	require.Len(t, events, 1)
	assert.Equal(t, uint8(60), events[0].Key)
	assert.Equal(t, 100*time.Millisecond, events[0].Start)
}

func TestWriteMIDI(t *testing.T) {
	events := []NoteEvent{
		{Key: 69, Name: "A4", Start: 0, End: 500 * time.Millisecond, Velocity: 96},
		{Key: 71, Name: "B4", Start: time.Second, End: 1500 * time.Millisecond, Velocity: 64},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMIDI(&buf, events, 120))

	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, s.Tracks, 1)

	type note struct {
		on   bool
		key  uint8
		tick int64
	}
	var notes []note
	var abs int64
	for _, ev := range s.Tracks[0] {
		abs += int64(ev.Delta)
		var ch, key, vel uint8
		switch {
		case ev.Message.GetNoteOn(&ch, &key, &vel):
			notes = append(notes, note{true, key, abs})
		case ev.Message.GetNoteOff(&ch, &key, &vel):
			notes = append(notes, note{false, key, abs})
		}
	}

	// 120 bpm: one quarter is 500ms
	assert.Equal(t, []note{
		{true, 69, 0},
		{false, 69, 960},
		{true, 71, 1920},
		{false, 71, 2880},
	}, notes)
}

func TestWriteMIDIRejects(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteMIDI(&buf, nil, 0))

	overlapping := []NoteEvent{
		{Key: 60, Start: 0, End: time.Second},
		{Key: 62, Start: 500 * time.Millisecond, End: 2 * time.Second},
	}
	assert.Error(t, WriteMIDI(&buf, overlapping, 120))
}
