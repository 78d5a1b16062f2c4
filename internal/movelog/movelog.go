// Package movelog formats the canonical execution-log stream: one record
// per hop an AGV initiates, in the exact string shape the rest of this
// codebase's reporting and telemetry layers consume.
package movelog

import "fmt"

// Entry is a single initiated hop.
type Entry struct {
	AGVID         string
	FromStation   int
	ToStation     int
	Minute        int // minutes since SIM_START
	Load          float64
	PayloadIDs    []string // nil/empty means the AGV is moving unladen
}

// Format renders e in the fleet's canonical move-log line shape:
// "{agv_id}-{from_station}-{to_station}-{HH:MM}-{load:.1f}-{payload_info}".
func Format(e Entry, simStartHour, simStartMinute int) string {
	return fmt.Sprintf("%s-%d-%d-%s-%.1f-%s",
		e.AGVID, e.FromStation, e.ToStation,
		FormatClock(e.Minute, simStartHour, simStartMinute),
		e.Load, payloadInfo(e.PayloadIDs))
}

func payloadInfo(ids []string) string {
	if len(ids) == 0 {
		return "empty"
	}
	out := ids[0]
	for _, id := range ids[1:] {
		out += "," + id
	}
	return out
}

// FormatClock converts minutes since SIM_START into an "HH:MM" clock string
// anchored at simStartHour:simStartMinute. Minutes are never formatted
// anywhere but at this log-emission boundary — the core keeps everything as
// plain integer minutes.
func FormatClock(minute, simStartHour, simStartMinute int) string {
	total := simStartHour*60 + simStartMinute + minute
	h := (total / 60) % 24
	m := total % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}

// Log accumulates Entry records in the order moves are initiated.
type Log struct {
	entries        []Entry
	simStartHour   int
	simStartMinute int
}

// NewLog creates an empty Log anchored at the given simulation start
// clock (spec default 08:00).
func NewLog(simStartHour, simStartMinute int) *Log {
	return &Log{simStartHour: simStartHour, simStartMinute: simStartMinute}
}

// Append records a new move-log entry.
func (l *Log) Append(e Entry) {
	l.entries = append(l.entries, e)
}

// Entries returns the recorded entries in append order. Callers must not
// mutate the returned slice.
func (l *Log) Entries() []Entry {
	return l.entries
}

// Lines renders every recorded entry via Format, in append order.
func (l *Log) Lines() []string {
	lines := make([]string, len(l.entries))
	for i, e := range l.entries {
		lines[i] = Format(e, l.simStartHour, l.simStartMinute)
	}
	return lines
}
