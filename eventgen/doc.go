// Package eventgen generates synthetic, internally consistent streams of
// analytics ingestion events ("track" actions, "user_set" property overwrites,
// "user_add" counter increments) to seed or load-test an analytics platform.
//
// The package is organized around five collaborators:
//   - Schema model: reserved-field contracts per event type (Describe, IsReservedName)
//   - Registry: per-synthetic-user state (profile, property snapshot, counters)
//   - Property generator: distribution-driven custom property sampling
//   - Sequencer: time-ordered, per-user-monotonic event emission
//   - Validator/serializer: schema checks and the flat wire record format
//
// Common usage pattern:
//
//	cfg := eventgen.SessionConfig{
//		UserCount:      100,
//		TimeRangeStart: start,
//		TimeRangeEnd:   end,
//		EventsPerUser:  50,
//		EventTypeWeights: map[eventgen.EventType]float64{
//			eventgen.EventTypeTrack:   8,
//			eventgen.EventTypeUserSet: 1,
//			eventgen.EventTypeUserAdd: 1,
//		},
//	}
//
//	session, err := eventgen.NewSession(cfg)
//	if err != nil {
//		// handle error
//	}
//
//	sink := eventgen.NewWriterSink(os.Stdout)
//	stats, err := session.Run(ctx, sink)
//
// Generated events are validated before they mutate any user state; a rejected
// candidate is regenerated once and surfaced as an error after that.
package eventgen
