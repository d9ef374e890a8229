package trace

import "context"

// Sink persists Events somewhere durable. Append runs on the scheduler's
// tick goroutine; RedisSink and PostgresSink write synchronously, and the
// Tracer bounds each call with a two-second timeout.
type Sink interface {
	Append(ctx context.Context, e Event) error
	Close() error
}

// multiSink fans an event out to every configured sink, continuing past
// individual failures so a dead sink never stalls the others.
type multiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks into one, appending to all and closing all.
func NewMultiSink(sinks ...Sink) Sink {
	return &multiSink{sinks: sinks}
}

func (m *multiSink) Append(ctx context.Context, e Event) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Append(ctx, e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multiSink) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
