//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/lfb-response-predictor/internal/adapter/kafka"
	"github.com/couchcryptid/lfb-response-predictor/internal/config"
	"github.com/couchcryptid/lfb-response-predictor/internal/domain"
	"github.com/couchcryptid/lfb-response-predictor/internal/observability"
	"github.com/couchcryptid/lfb-response-predictor/internal/pipeline"
)

const (
	testSourceTopic = "test-incident-requests"
	testSinkTopic   = "test-predictions"
)

// replyMessage holds a decoded message read from the sink topic.
type replyMessage struct {
	Reply   domain.PredictionReply
	Key     string
	Headers map[string]string
}

func readReply(ctx context.Context, t *testing.T, consumer *kafkago.Reader) replyMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var reply domain.PredictionReply
	require.NoError(t, json.Unmarshal(msg.Value, &reply), "unmarshal sink message")

	return replyMessage{Reply: reply, Key: string(msg.Key), Headers: headers}
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

func newSinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

func publish(ctx context.Context, t *testing.T, broker string, msgs ...kafkago.Message) {
	t.Helper()
	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, msgs...))
}

func payloadMessage(t *testing.T, key string, p domain.IncidentPayload) kafkago.Message {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	return kafkago.Message{Key: []byte(key), Value: data}
}

// TestKafkaReaderWriter round-trips one request through the reader, the
// transformer and the writer.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-reader")

	request := payloadMessage(t, "req-1", referencePayload())
	publish(ctx, t, broker, request)

	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawMessage
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("req-1"), raw.Key)
	assert.Equal(t, request.Value, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	out, err := newReferenceTransformer(t).Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.OutputMessage{out}))

	rm := readReply(ctx, t, newSinkConsumer(t, broker))
	assert.Equal(t, "req-1", rm.Key)
	assert.Equal(t, domain.StatusOK, rm.Headers["status"])
	_, err = time.Parse(time.RFC3339, rm.Headers["processed_at"])
	require.NoError(t, err, "processed_at should be valid RFC3339")

	assert.Equal(t, "req-1", rm.Reply.RequestID)
	require.NotNil(t, rm.Reply.Prediction)
	assert.Equal(t, 298, rm.Reply.Prediction.TotalSeconds)
	assert.Equal(t, "4 min 58 s", rm.Reply.Display)
}

// TestPipelineEndToEnd runs the full pipeline against real Kafka and checks
// one reply per request, including error replies for rejected input.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-pipeline")

	night := referencePayload()
	night.CallTime = "03:00"
	night.DeployedFrom = "Other Station"

	unknownWard := referencePayload()
	unknownWard.Ward = "Atlantis"

	flood := referencePayload()
	flood.IncidentGroup = "Flood"

	publish(ctx, t, broker,
		payloadMessage(t, "afternoon", referencePayload()),
		payloadMessage(t, "night", night),
		payloadMessage(t, "atlantis", unknownWard),
		payloadMessage(t, "flood", flood),
	)

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, newReferenceTransformer(t), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	received := make(map[string]replyMessage, 4)
	for len(received) < 4 {
		rm := readReply(ctx, t, consumer)
		received[rm.Key] = rm
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	for key, rm := range received {
		assert.Equal(t, key, rm.Reply.RequestID)
		assert.Equal(t, rm.Reply.Status, rm.Headers["status"])
		_, err := time.Parse(time.RFC3339, rm.Headers["processed_at"])
		assert.NoError(t, err, "invalid processed_at format")
	}

	require.NotNil(t, received["afternoon"].Reply.Prediction)
	assert.Equal(t, "4 min 58 s", received["afternoon"].Reply.Display)
	require.NotNil(t, received["night"].Reply.Prediction)
	assert.Equal(t, 442, received["night"].Reply.Prediction.TotalSeconds)

	atlantis := received["atlantis"].Reply
	assert.Equal(t, domain.StatusError, atlantis.Status)
	assert.Equal(t, "invalid_location", atlantis.ErrorKind)
	assert.Nil(t, atlantis.Prediction)

	assert.Equal(t, "unknown_category", received["flood"].Reply.ErrorKind)
	require.NoError(t, p.CheckReadiness(ctx))
}

// TestPipelineUndecodableMessage verifies that a message that is not JSON is
// skipped and the pipeline continues with the next one.
func TestPipelineUndecodableMessage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-poison")

	publish(ctx, t, broker,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		payloadMessage(t, "good", referencePayload()),
	)

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(reader, newReferenceTransformer(t), writer, discardLogger(), observability.NewMetricsForTesting(), 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	rm := readReply(ctx, t, consumer)
	assert.Equal(t, "good", rm.Key)
	assert.Equal(t, domain.StatusOK, rm.Reply.Status)

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
