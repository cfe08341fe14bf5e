package eventgen

import (
	"context"
	"encoding/json"
	"io"
	"sync"
)

// Sink receives accepted events at the emission boundary. Implementations must
// tolerate concurrent calls, shards emit without cross-shard coordination and
// global ordering is not guaranteed.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// WriterSink serializes each event as one wire record per line (JSONL).
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a sink writing line-delimited wire records to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Emit serializes and writes the event followed by a newline.
func (s *WriterSink) Emit(_ context.Context, event Event) error {
	record, err := Serialize(event)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err = s.w.Write(record); err != nil {
		return err
	}

	_, err = s.w.Write([]byte("\n"))

	return err
}

// BatchSink collects emitted events in memory, for tests and for consumers
// that ship batches to an ingestion API in one request.
type BatchSink struct {
	mu     sync.Mutex
	events []Event
}

// NewBatchSink creates an empty in-memory sink.
func NewBatchSink() *BatchSink {
	return &BatchSink{}
}

// Emit appends the event to the batch.
func (s *BatchSink) Emit(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)

	return nil
}

// Events returns a copy of the collected events.
func (s *BatchSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]Event, len(s.events))
	copy(copied, s.events)

	return copied
}

// MarshalBatch renders the collected events as one JSON array of wire records.
func (s *BatchSink) MarshalBatch() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]json.RawMessage, 0, len(s.events))
	for _, event := range s.events {
		record, err := Serialize(event)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return wireJSON.Marshal(records)
}
