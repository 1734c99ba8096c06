package logger

import (
	"sync"
)

const (
	LevelWarn  = "warn"
	LevelError = "error"
)

// Event is a warning or error captured by a Collector.
type Event struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// Collector forwards every call to an underlying Logger and keeps the
// warnings and errors so a caller can inspect them after a run.
// Loggers derived through With/WithFields/WithError share the same event list.
type Collector struct {
	base   Logger
	fields map[string]interface{}
	sink   *eventSink
}

type eventSink struct {
	mu     sync.Mutex
	events []Event
}

func NewCollector(base Logger) *Collector {
	if base == nil {
		base = NewNoOpLogger()
	}
	return &Collector{base: base, sink: &eventSink{}}
}

func (c *Collector) Debug(msg string, fields map[string]interface{}) {
	c.base.Debug(msg, fields)
}

func (c *Collector) Info(msg string, fields map[string]interface{}) {
	c.base.Info(msg, fields)
}

func (c *Collector) Warn(msg string, fields map[string]interface{}) {
	c.base.Warn(msg, fields)
	c.record(LevelWarn, msg, fields)
}

func (c *Collector) Error(msg string, fields map[string]interface{}) {
	c.base.Error(msg, fields)
	c.record(LevelError, msg, fields)
}

func (c *Collector) WithFields(fields map[string]interface{}) Logger {
	return &Collector{
		base:   c.base.WithFields(fields),
		fields: merge(c.fields, fields),
		sink:   c.sink,
	}
}

func (c *Collector) WithError(err error) Logger {
	return &Collector{
		base:   c.base.WithError(err),
		fields: merge(c.fields, map[string]interface{}{"error": err.Error()}),
		sink:   c.sink,
	}
}

func (c *Collector) With(fields map[string]interface{}) Logger {
	return c.WithFields(fields)
}

// Events returns a copy of the captured events in the order they were logged.
func (c *Collector) Events() []Event {
	c.sink.mu.Lock()
	defer c.sink.mu.Unlock()
	out := make([]Event, len(c.sink.events))
	copy(out, c.sink.events)
	return out
}

func (c *Collector) Warnings() int {
	return c.count(LevelWarn)
}

func (c *Collector) Errors() int {
	return c.count(LevelError)
}

func (c *Collector) count(level string) int {
	c.sink.mu.Lock()
	defer c.sink.mu.Unlock()
	n := 0
	for _, e := range c.sink.events {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (c *Collector) record(level, msg string, fields map[string]interface{}) {
	c.sink.mu.Lock()
	defer c.sink.mu.Unlock()
	c.sink.events = append(c.sink.events, Event{
		Level:   level,
		Message: msg,
		Fields:  merge(c.fields, fields),
	})
}

func merge(a, b map[string]interface{}) map[string]interface{} {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
