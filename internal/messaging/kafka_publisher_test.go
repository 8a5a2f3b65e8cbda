package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/sportsbook-explorer/internal/models"
)

// fakeWriter records messages instead of talking to a broker
type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func sampleResult() *models.ResultSet {
	over := 150
	return &models.ResultSet{
		ID:    uuid.New(),
		Query: models.Query{LeagueID: 88808, CategoryID: 1286, SubcategoryID: 13365},
		Rows: []models.Row{
			models.PivotRow{Participant: "Dolphins", Line: decimal.RequireFromString("10.5"), OverOdds: &over},
		},
		SelectionCount: 1,
		FetchedAt:      time.Now().UTC(),
	}
}

func TestNewKafkaPublisher(t *testing.T) {
	publisher := NewKafkaPublisher(KafkaPublisherConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "sportsbook_markets",
	}, zerolog.Nop())

	require.NotNil(t, publisher)
	writer, ok := publisher.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "sportsbook_markets", writer.Topic)

	assert.NoError(t, publisher.Close())
}

func TestBuildMessage(t *testing.T) {
	rs := sampleResult()

	msg, err := BuildMessage(rs)

	require.NoError(t, err)
	assert.Equal(t, "88808:1286:13365", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, rs.ID.String(), string(msg.Headers[0].Value))

	var decoded ResultMessage
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, rs.ID.String(), decoded.BatchID)
	assert.Equal(t, models.ShapePivot, decoded.Shape)
	require.NotNil(t, decoded.Result)
	assert.Len(t, decoded.Result.Rows, 1)
}

func TestPublish_Success(t *testing.T) {
	writer := &fakeWriter{}
	publisher := newKafkaPublisher(writer, "sportsbook_markets", zerolog.Nop())

	require.NoError(t, publisher.Publish(context.Background(), sampleResult()))
	assert.Len(t, writer.messages, 1)

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

func TestPublish_WriteFailure(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker down")}
	publisher := newKafkaPublisher(writer, "sportsbook_markets", zerolog.Nop())

	err := publisher.Publish(context.Background(), sampleResult())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}
