package postgressink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewSinkFromPGXPool_WithNilConnection_ReturnsError(t *testing.T) {
	sink, err := NewSinkFromPGXPool(nil)

	assert.ErrorIs(t, err, ErrNilDatabaseConnection)
	assert.Nil(t, sink)
}

func Test_NewSinkFromSQLDB_WithNilConnection_ReturnsError(t *testing.T) {
	sink, err := NewSinkFromSQLDB(nil)

	assert.ErrorIs(t, err, ErrNilDatabaseConnection)
	assert.Nil(t, sink)
}

func Test_NewSinkFromSQLX_WithNilConnection_ReturnsError(t *testing.T) {
	sink, err := NewSinkFromSQLX(nil)

	assert.ErrorIs(t, err, ErrNilDatabaseConnection)
	assert.Nil(t, sink)
}

func Test_WithTableName_EmptyName_ReturnsError(t *testing.T) {
	err := WithTableName("")(&Sink{})

	assert.ErrorIs(t, err, ErrEmptyTableName)
}

func Test_WithBatchSize_NonPositive_ReturnsError(t *testing.T) {
	err := WithBatchSize(0)(&Sink{})

	assert.ErrorIs(t, err, ErrInvalidBatchSize)
}

func Test_BuildInsertQuery_ProducesInsertForEveryRecord(t *testing.T) {
	sink := &Sink{recordTableName: defaultRecordTableName}

	batch := []bufferedRecord{
		{
			accountID:  "acct-000001",
			distinctID: "d-1",
			eventType:  "track",
			eventName:  "page_view",
			occurredAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			record:     []byte(`{"#account_id":"acct-000001"}`),
		},
		{
			accountID:  "acct-000002",
			distinctID: "d-2",
			eventType:  "user_set",
			occurredAt: time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC),
			record:     []byte(`{"#account_id":"acct-000002"}`),
		},
	}

	sqlQuery, err := sink.buildInsertQuery(batch)
	require.NoError(t, err)

	assert.Contains(t, sqlQuery, `INSERT INTO "ingestion_events"`)
	assert.Contains(t, sqlQuery, "acct-000001")
	assert.Contains(t, sqlQuery, "acct-000002")
	assert.Contains(t, sqlQuery, "::jsonb")
	assert.Contains(t, sqlQuery, "::timestamp with time zone")
}

func Test_BuildCountQuery_TargetsConfiguredTable(t *testing.T) {
	sink := &Sink{recordTableName: "custom_records"}

	sqlQuery, err := sink.buildCountQuery()
	require.NoError(t, err)

	assert.Contains(t, sqlQuery, `FROM "custom_records"`)
	assert.Contains(t, sqlQuery, "COUNT(*)")
}
