package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func testPublisher(w messageWriter) *Publisher {
	return &Publisher{writer: w, topic: "beach-bulletin-snapshots", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func record(id int, name string) domain.BeachRecord {
	return domain.BeachRecord{
		ID:             id,
		Name:           name,
		Status:         domain.StatusProper,
		Zone:           domain.ZoneEast,
		Period:         "08/09/2025 a 10/09/2025",
		DaysInPeriod:   domain.DayList{"2025-09-08", "2025-09-09", "2025-09-10"},
		BulletinNumber: "37/2025",
		SampleType:     "Coleta semanal",
		ExtractedOn:    time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	msg, err := serializeToMessage(record(3, "Praia do Futuro I"))
	require.NoError(t, err)

	assert.Equal(t, []byte("3"), msg.Key)
	assert.Contains(t, string(msg.Value), `"Nome":"Praia do Futuro I"`)
	assert.Contains(t, string(msg.Value), `"Status":"Própria para banho"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "bulletin_number", msg.Headers[0].Key)
	assert.Equal(t, []byte("37/2025"), msg.Headers[0].Value)
	assert.Equal(t, "extracted_on", msg.Headers[1].Key)
	assert.Equal(t, []byte("2025-09-12"), msg.Headers[1].Value)
}

func TestPublish(t *testing.T) {
	w := &mockWriter{}
	p := testPublisher(w)

	err := p.Publish(context.Background(), []domain.BeachRecord{record(1, "Iracema"), record(2, "Meireles")})
	require.NoError(t, err)

	require.Len(t, w.msgs, 2)
	assert.Equal(t, []byte("1"), w.msgs[0].Key)
	assert.Equal(t, []byte("2"), w.msgs[1].Key)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublish_Empty(t *testing.T) {
	w := &mockWriter{err: errors.New("should not be called")}
	require.NoError(t, testPublisher(w).Publish(context.Background(), nil))
}

func TestPublish_WriterError(t *testing.T) {
	w := &mockWriter{err: errors.New("leader not available")}
	err := testPublisher(w).Publish(context.Background(), []domain.BeachRecord{record(1, "Iracema")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beach-bulletin-snapshots")
	assert.Contains(t, err.Error(), "leader not available")
}
