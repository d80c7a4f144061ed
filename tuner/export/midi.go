package export

import (
	"fmt"
	"io"
	"math"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/RyanBlaney/sonido-tuner/algorithms/temporal"
	"github.com/RyanBlaney/sonido-tuner/tuner"
)

// TicksPerQuarter is the resolution of written MIDI files
const TicksPerQuarter = 960

// NoteEvent is a run of consecutive measurements on the same key
type NoteEvent struct {
	Key       uint8         `json:"key"`
	Name      string        `json:"name"`
	Start     time.Duration `json:"start"` // Offset from the first measurement
	End       time.Duration `json:"end"`
	Velocity  uint8         `json:"velocity"`
	MeanCents float64       `json:"mean_cents"`
}

// Duration is how long the note sounds
func (n NoteEvent) Duration() time.Duration {
	return n.End - n.Start
}

// Velocity maps a dynamic mark onto a MIDI velocity, pp = 32 through ff = 112
func Velocity(mark temporal.DynamicMark) uint8 {
	if mark < temporal.Pianissimo {
		mark = temporal.Pianissimo
	}
	if mark > temporal.Fortissimo {
		mark = temporal.Fortissimo
	}
	return uint8(32 + 16*int(mark))
}

// Segment groups measurements into notes. A note continues while the key
// stays the same and successive measurements are at most maxGap apart; it
// ends at the next measurement, or maxGap after its last one when the stream
// breaks off. Keys outside 0-127 are skipped.
func Segment(measurements []*tuner.Measurement, maxGap time.Duration) []NoteEvent {
	events := []NoteEvent{}
	if len(measurements) == 0 {
		return events
	}

	origin := measurements[0].Timestamp
	var current *NoteEvent
	var centsSum float64
	var count int
	var loudest temporal.DynamicMark
	var lastSeen time.Time

	flush := func(end time.Time) {
		if current == nil {
			return
		}
		current.End = end.Sub(origin)
		current.MeanCents = centsSum / float64(count)
		current.Velocity = Velocity(loudest)
		events = append(events, *current)
		current = nil
	}

	for _, m := range measurements {
		if current != nil {
			gap := m.Timestamp.Sub(lastSeen)
			switch {
			case gap > maxGap:
				flush(lastSeen.Add(maxGap))
			case int(current.Key) != m.MIDIKey:
				flush(m.Timestamp)
			}
		}

		lastSeen = m.Timestamp
		if m.MIDIKey < 0 || m.MIDIKey > 127 {
			flush(m.Timestamp)
			continue
		}

		if current == nil {
			current = &NoteEvent{
				Key:   uint8(m.MIDIKey),
				Name:  m.Note,
				Start: m.Timestamp.Sub(origin),
			}
			centsSum, count, loudest = 0, 0, temporal.Pianissimo
		}
		centsSum += m.Cents
		count++
		if m.Dynamic > loudest {
			loudest = m.Dynamic
		}
	}
	flush(lastSeen.Add(maxGap))

	return events
}

// WriteMIDI writes events as a single-track standard MIDI file at bpm
func WriteMIDI(w io.Writer, events []NoteEvent, bpm float64) error {
	if !(bpm > 0) {
		return fmt.Errorf("tempo must be positive, got %g bpm", bpm)
	}

	toTicks := func(d time.Duration) uint32 {
		return uint32(math.Round(d.Seconds() * bpm / 60 * TicksPerQuarter))
	}

	var track smf.Track
	track.Add(0, smf.MetaTempo(bpm))

	var cursor uint32
	for i, ev := range events {
		start, end := toTicks(ev.Start), toTicks(ev.End)
		if start < cursor {
			return fmt.Errorf("note %d (%s) starts before the previous note ends", i, ev.Name)
		}
		if end <= start {
			end = start + 1
		}

		track.Add(start-cursor, midi.NoteOn(0, ev.Key, ev.Velocity))
		track.Add(end-start, midi.NoteOff(0, ev.Key))
		cursor = end
	}
	track.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)
	if err := s.Add(track); err != nil {
		return fmt.Errorf("adding track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("writing midi: %w", err)
	}
	return nil
}
