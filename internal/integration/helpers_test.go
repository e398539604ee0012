//go:build integration

package integration_test

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/lfb-response-predictor/internal/adapter/artifact"
	"github.com/couchcryptid/lfb-response-predictor/internal/domain"
	"github.com/couchcryptid/lfb-response-predictor/internal/observability"
	"github.com/couchcryptid/lfb-response-predictor/internal/pipeline"
)

const kafkaImage = "confluentinc/confluent-local:7.5.0"

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("lfb-predictor-test"))
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// newReferenceTransformer builds the reply transformer over the reference bundle.
func newReferenceTransformer(t *testing.T) *pipeline.ReplyTransformer {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, artifact.Write(dir, artifact.DefaultFiles(), artifact.ReferenceBundle()))
	bundle, err := artifact.Load(dir, artifact.DefaultFiles())
	require.NoError(t, err)
	engine, err := domain.NewEngine(bundle, domain.PolicyStrict)
	require.NoError(t, err)

	svc := pipeline.NewService(engine, observability.NewMetricsForTesting(), discardLogger())
	return pipeline.NewTransformer(svc, discardLogger())
}

func referencePayload() domain.IncidentPayload {
	return domain.IncidentPayload{
		CallDate:         "2024-06-15",
		CallTime:         "14:00",
		Borough:          "Camden",
		Ward:             "Kentish Town",
		Station:          "A22",
		IncidentGroup:    "Fire",
		PropertyCategory: "Dwelling",
		DeployedFrom:     "Home Station",
	}
}
