package eventgen_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventforge/eventgen-go/eventgen"
)

func Test_WriterSink_WritesOneRecordPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := eventgen.NewWriterSink(&buf)
	ctx := context.Background()

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, sink.Emit(ctx,
		eventgen.BuildTrackEvent("acct-000001", "d-1", at, "click", eventgen.PresetProfile{}, nil)))
	require.NoError(t, sink.Emit(ctx,
		eventgen.BuildUserSetEvent("acct-000001", "d-1", at.Add(time.Minute), eventgen.PresetProfile{},
			map[string]eventgen.PropertyValue{"plan": eventgen.TextValue("pro")})))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	for _, line := range lines {
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record), "each line must be a standalone record")
	}
}

func Test_BatchSink_CollectsAndMarshals(t *testing.T) {
	sink := eventgen.NewBatchSink()
	ctx := context.Background()

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, sink.Emit(ctx,
		eventgen.BuildTrackEvent("acct-000001", "d-1", at, "click", eventgen.PresetProfile{}, nil)))
	require.NoError(t, sink.Emit(ctx,
		eventgen.BuildTrackEvent("acct-000002", "d-2", at, "signup", eventgen.PresetProfile{}, nil)))

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "acct-000001", events[0].AccountID)

	data, err := sink.MarshalBatch()
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "click", records[0]["#event_name"])
	assert.Equal(t, "signup", records[1]["#event_name"])
}

func Test_BatchSink_EventsReturnsACopy(t *testing.T) {
	sink := eventgen.NewBatchSink()
	ctx := context.Background()

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, sink.Emit(ctx,
		eventgen.BuildTrackEvent("acct-000001", "d-1", at, "click", eventgen.PresetProfile{}, nil)))

	events := sink.Events()
	events[0].AccountID = "tampered"

	assert.Equal(t, "acct-000001", sink.Events()[0].AccountID)
}
