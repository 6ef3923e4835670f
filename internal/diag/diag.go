// Package diag is the structured diagnostics channel of the builder.
// Every message is tagged with the document section keyword it
// originated from, so tooling can point users at the offending
// directive.
package diag

import "sync"

// Severity classifies a diagnostic message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Message is one diagnostic emitted during construction.
type Message struct {
	Severity Severity `json:"severity"`
	Keyword  string   `json:"keyword"` // originating section keyword, e.g. "wheels2"
	Text     string   `json:"text"`
}

// Sink receives diagnostics as they are emitted.
type Sink interface {
	Info(keyword, text string)
	Warning(keyword, text string)
	Error(keyword, text string)
}

// Collector is a Sink that retains every message, used by tests and by
// the CLI summary. Safe for concurrent use, though the builder itself
// is single-threaded.
type Collector struct {
	mu       sync.Mutex
	messages []Message
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Info records an info message.
func (c *Collector) Info(keyword, text string) {
	c.add(SeverityInfo, keyword, text)
}

// Warning records a warning message.
func (c *Collector) Warning(keyword, text string) {
	c.add(SeverityWarning, keyword, text)
}

// Error records an error message.
func (c *Collector) Error(keyword, text string) {
	c.add(SeverityError, keyword, text)
}

func (c *Collector) add(sev Severity, keyword, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, Message{Severity: sev, Keyword: keyword, Text: text})
}

// Messages returns a copy of everything collected so far.
func (c *Collector) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Count returns how many messages of the given severity were collected.
func (c *Collector) Count(sev Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.messages {
		if m.Severity == sev {
			n++
		}
	}
	return n
}

// multi fans one diagnostic out to several sinks.
type multi struct {
	sinks []Sink
}

// Multi returns a Sink that forwards every message to all of the given
// sinks, in order.
func Multi(sinks ...Sink) Sink {
	return &multi{sinks: sinks}
}

func (m *multi) Info(keyword, text string) {
	for _, s := range m.sinks {
		s.Info(keyword, text)
	}
}

func (m *multi) Warning(keyword, text string) {
	for _, s := range m.sinks {
		s.Warning(keyword, text)
	}
}

func (m *multi) Error(keyword, text string) {
	for _, s := range m.sinks {
		s.Error(keyword, text)
	}
}
