package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
)

type fakeWriter struct {
	failures int
	calls    int
	msgs     []kafkago.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("leader not available")
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func summary() domain.RunSummary {
	return domain.RunSummary{
		RunID:         "0b1c",
		Mission:       "SARAL",
		OutputPath:    "/out/AltimeterGridded_SARAL.nc",
		Tiles:         map[domain.TileStatus]int{domain.TileOK: 3, domain.TileAbsent: 10},
		OutputRecords: 42,
		FinishedAt:    time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	msg, err := serializeToMessage(summary())
	require.NoError(t, err)

	assert.Equal(t, []byte("0b1c"), msg.Key)
	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "SARAL", got["mission"])
	assert.Equal(t, 42.0, got["output_records"])
	assert.Equal(t, map[string]any{"ok": 3.0, "absent": 10.0}, got["tiles"])

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "mission", msg.Headers[0].Key)
	assert.Equal(t, []byte("42"), msg.Headers[1].Value)
	assert.Equal(t, []byte("2026-03-02T10:00:00Z"), msg.Headers[2].Value)
}

func TestPublish_RetriesTransientFailures(t *testing.T) {
	w := &fakeWriter{failures: 2}
	p := &Publisher{writer: w, logger: slog.Default(), backoff: time.Millisecond}

	require.NoError(t, p.Publish(context.Background(), summary()))
	assert.Equal(t, 3, w.calls)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("0b1c"), w.msgs[0].Key)
}

func TestPublish_GivesUp(t *testing.T) {
	w := &fakeWriter{failures: 100}
	p := &Publisher{writer: w, logger: slog.Default(), backoff: time.Millisecond}

	err := p.Publish(context.Background(), summary())
	require.ErrorContains(t, err, "after 4 attempts")
	assert.Equal(t, maxAttempts, w.calls)
}

func TestPublish_StopsOnCancel(t *testing.T) {
	w := &fakeWriter{failures: 100}
	p := &Publisher{writer: w, logger: slog.Default(), backoff: time.Hour}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Publish(ctx, summary())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, w.calls)
}
