//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/altimeter-grid-etl/internal/adapter/kafka"
	"github.com/couchcryptid/altimeter-grid-etl/internal/adapter/ncfile"
	"github.com/couchcryptid/altimeter-grid-etl/internal/collocate"
	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
	"github.com/couchcryptid/altimeter-grid-etl/internal/observability"
	"github.com/couchcryptid/altimeter-grid-etl/internal/pipeline"
)

const testTopic = "test-grid-runs"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("altimeter-grid"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// writeTrack stores a short QC-passing along-track segment in one tile.
func writeTrack(t *testing.T, dataDir string, m domain.Mission, key domain.TileKey, day0 float64) {
	t.Helper()
	var o domain.Observations
	for i := range 30 {
		o.Time = append(o.Time, day0+float64(i)/86400)
		o.Lat = append(o.Lat, float64(key.Lat)+0.4+float64(i)*0.005)
		o.Lon = append(o.Lon, float64(key.Lon)+0.5)
		o.SWH = append(o.SWH, 1.5+float64(i)*0.01)
		o.SWHCal = append(o.SWHCal, 1.6)
		o.SWHC = append(o.SWHC, 1.4)
		o.Wind = append(o.Wind, 7)
		o.WindCal = append(o.WindCal, 7.2)
		o.Sig0Std = append(o.Sig0Std, 0.1)
		o.SWHObs = append(o.SWHObs, 20)
		o.SWHStd = append(o.SWHStd, 0.2)
		o.SWHQC = append(o.SWHQC, 0)
	}
	path := key.Path(dataDir, m)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, ncfile.WriteTile(path, domain.FamilyKu, o))
}

// TestPipeline_PublishesRunSummary runs a small mission archive end to end
// and reads the run summary back from the notification topic.
func TestPipeline_PublishesRunSummary(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	m, err := domain.ResolveMission(5)
	require.NoError(t, err)
	dataDir, outDir := t.TempDir(), t.TempDir()
	day0 := domain.TimeToDays(time.Date(2015, 6, 1, 12, 0, 0, 0, time.UTC))
	keys := []domain.TileKey{{Lat: -40, Lon: 100}, {Lat: -40, Lon: 101}}
	writeTrack(t, dataDir, m, keys[0], day0)

	grid := domain.Grid{Points: []domain.GridPoint{{Lat: -39.5, Lon: 100.5}, {Lat: -39.5, Lon: 101.5}}}
	publisher := kafka.NewPublisher([]string{broker}, testTopic, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	p := pipeline.New(
		ncfile.NewTileReader(dataDir, m),
		collocate.New(grid, collocate.DefaultParams(), discardLogger()),
		ncfile.NewCDFSink(outDir),
		pipeline.Options{
			RunID:          "integration-run",
			Mission:        m,
			Keys:           keys,
			BufferCapacity: domain.CapacityForPower(6),
			QC:             domain.DefaultQCThresholds(m),
			Window: domain.DateWindow{
				Start: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2021, 12, 31, 23, 0, 0, 0, time.UTC),
			},
			Bounds:     domain.DefaultBounds(),
			GridPoints: grid.Len(),
		},
		discardLogger(), observability.NewMetricsForTesting(),
	).WithPublisher(publisher)

	summary, err := p.Run(ctx)
	require.NoError(t, err)
	require.Positive(t, summary.OutputRecords)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read run summary")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "integration-run", string(msg.Key))
	assert.Equal(t, "SARAL", headers["mission"])
	_, err = time.Parse(time.RFC3339, headers["finished_at"])
	assert.NoError(t, err, "finished_at should be valid RFC3339")

	var got domain.RunSummary
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, summary.OutputPath, got.OutputPath)
	assert.Equal(t, summary.OutputRecords, got.OutputRecords)
	assert.Equal(t, 1, got.Tiles[domain.TileOK])
	assert.Equal(t, 1, got.Tiles[domain.TileAbsent])
}
