//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/zzfadi/deeptime-anomaly-engine/internal/survey"
)

// startKafka launches a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		require.NoError(t, testcontainers.TerminateContainer(container))
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic via the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	require.NoError(t, err, "create topic %s", topic)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// surveyScan builds a raw scan with a calm 40 uT background and one 90 uT
// spike pair close enough together to group.
func surveyScan(scanID string) survey.RawScanRecord {
	base := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	readings := make([]survey.RawReadingRecord, 0, 12)

	reading := func(i int, magnitude, lat, lon float64) survey.RawReadingRecord {
		return survey.RawReadingRecord{
			TimestampMS: base.Add(time.Duration(i) * time.Second).UnixMilli(),
			X:           magnitude,
			Latitude:    lat,
			Longitude:   lon,
			Altitude:    12.0,
			Accuracy:    3.0,
		}
	}

	// Spikes first so the trailing baseline window stays calm.
	readings = append(readings,
		reading(0, 90.0, 37.80610, -122.43000),
		reading(1, 90.0, 37.80611, -122.43000),
	)
	for i := 2; i < 12; i++ {
		readings = append(readings, reading(i, 40.0, 37.80650, -122.43050))
	}

	return survey.RawScanRecord{
		ScanID:   scanID,
		DeviceID: "mag-unit-07",
		Readings: readings,
	}
}
