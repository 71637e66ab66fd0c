package crowd

import (
	"fmt"
	"strings"
)

// Event categories.
const (
	CatPopulation = "population"
	CatPath       = "path"
	CatCollision  = "collision"
	CatGrid       = "grid"
)

// Event is one recorded simulation event.
type Event struct {
	Tick     int
	Agent    string // "A12", or "--" for global events
	Category string
	Key      string
	Value    string
	NumVal   float64
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] A12  population spawn            at (14,233)
func (e Event) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-10s %-16s %s",
		e.Tick, e.Agent, e.Category, e.Key, e.Value)
}

// EventLog collects structured, machine-readable events. Verbose entries
// (per-agent repaths) are dropped unless the log was created verbose.
type EventLog struct {
	entries []Event
	verbose bool
	limit   int
}

// NewEventLog creates a log. limit > 0 keeps only the most recent entries.
func NewEventLog(verbose bool, limit int) *EventLog {
	return &EventLog{verbose: verbose, limit: limit}
}

// Add records a new entry.
func (l *EventLog) Add(tick int, agent, category, key, value string, numVal float64) {
	if l == nil {
		return
	}
	l.entries = append(l.entries, Event{
		Tick:     tick,
		Agent:    agent,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
	if l.limit > 0 && len(l.entries) > l.limit*2 {
		l.entries = append(l.entries[:0], l.entries[len(l.entries)-l.limit:]...)
	}
}

// AddVerbose records an entry only when verbose mode is on.
func (l *EventLog) AddVerbose(tick int, agent, category, key, value string, numVal float64) {
	if l == nil || !l.verbose {
		return
	}
	l.Add(tick, agent, category, key, value, numVal)
}

// Verbose reports whether verbose entries are recorded.
func (l *EventLog) Verbose() bool { return l != nil && l.verbose }

// Entries returns the recorded entries, oldest first.
func (l *EventLog) Entries() []Event {
	if l == nil {
		return nil
	}
	if l.limit > 0 && len(l.entries) > l.limit {
		return l.entries[len(l.entries)-l.limit:]
	}
	return l.entries
}

// Filter returns entries matching category and/or key; "" matches anything.
func (l *EventLog) Filter(category, key string) []Event {
	var out []Event
	for _, e := range l.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Count returns how many entries match category and key.
func (l *EventLog) Count(category, key string) int {
	return len(l.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key.
func (l *EventLog) LastOf(category, key string) (Event, bool) {
	entries := l.Filter(category, key)
	if len(entries) == 0 {
		return Event{}, false
	}
	return entries[len(entries)-1], true
}

// Format renders every entry, one per line.
func (l *EventLog) Format() string {
	var sb strings.Builder
	for _, e := range l.Entries() {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
