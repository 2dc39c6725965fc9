package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "xcmkit/pkg/platform/audit"
)

type recordingProducer struct {
	records []*kgo.Record
	err     error
}

func (p *recordingProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		p.records = append(p.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestAppend_ProducesKeyedJSON(t *testing.T) {
	producer := &recordingProducer{}
	store := New(producer, "xcmkit.audit")

	err := store.Append(context.Background(), audit.Event{
		Action:    string(audit.EventForeignAssetCached),
		Subject:   "statemint",
		RequestID: "req-1",
	})
	require.NoError(t, err)
	require.Len(t, producer.records, 1)

	record := producer.records[0]
	assert.Equal(t, "xcmkit.audit", record.Topic)

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(record.Value, &decoded))
	assert.Equal(t, decoded.ID.String(), string(record.Key))
	assert.Equal(t, audit.CategorySecurity, decoded.Category)
	assert.Equal(t, "statemint", decoded.Subject)
	assert.Equal(t, "req-1", decoded.RequestID)
}

func TestAppend_ProduceError(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker down")}
	store := New(producer, "xcmkit.audit")

	err := store.Append(context.Background(), audit.Event{Action: string(audit.EventDirectiveBuilt)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}
