// Утилита переотправки событий из DLQ обратно в основной топик.
// По умолчанию работает в режиме dry-run и только перечисляет кандидатов.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/leathershop/internal/messaging/kafka"
)

const (
	defaultReplayLimit = 100
	defaultIdleTimeout = 2 * time.Second
)

type options struct {
	brokers     []string
	dlqTopic    string
	targetTopic string
	limit       int
	execute     bool
	fromNewest  bool
	idleTimeout time.Duration
}

// dlqRecord — payload сообщений DLQ-топика: исходное событие плюс причина
// попадания в DLQ. Его пишет outbox-воркер.
type dlqRecord struct {
	OutboxID      string          `json:"outbox_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishError  string          `json:"publish_error"`
}

type brokerOffsets interface {
	Partitions(topic string) ([]int32, error)
	GetOffset(topic string, partition int32, time int64) (int64, error)
	Close() error
}

type partitionReader interface {
	Messages() <-chan *sarama.ConsumerMessage
	Errors() <-chan *sarama.ConsumerError
	Close() error
}

type readerFactory interface {
	ConsumePartition(topic string, partition int32, offset int64) (partitionReader, error)
	Close() error
}

type eventSender interface {
	SendMessage(msg *sarama.ProducerMessage) (partition int32, offset int64, err error)
	Close() error
}

type saramaReaderFactory struct {
	consumer sarama.Consumer
}

func (f saramaReaderFactory) ConsumePartition(topic string, partition int32, offset int64) (partitionReader, error) {
	return f.consumer.ConsumePartition(topic, partition, offset)
}

func (f saramaReaderFactory) Close() error {
	if f.consumer == nil {
		return nil
	}
	return f.consumer.Close()
}

var connectKafka = func(opts options) (brokerOffsets, readerFactory, eventSender, error) {
	consumerConfig := sarama.NewConfig()
	consumerConfig.Consumer.Return.Errors = true

	client, err := sarama.NewClient(opts.brokers, consumerConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create kafka client: %w", err)
	}

	consumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("create kafka consumer: %w", err)
	}

	if !opts.execute {
		return client, saramaReaderFactory{consumer: consumer}, nil, nil
	}

	producerConfig := sarama.NewConfig()
	producerConfig.Producer.RequiredAcks = sarama.WaitForAll
	producerConfig.Producer.Retry.Max = 5
	producerConfig.Producer.Return.Successes = true
	producerConfig.Producer.Compression = sarama.CompressionSnappy
	producerConfig.Producer.Idempotent = true
	producerConfig.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(opts.brokers, producerConfig)
	if err != nil {
		_ = consumer.Close()
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return client, saramaReaderFactory{consumer: consumer}, producer, nil
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if err != nil {
		fail("%v", err)
	}

	if err := run(context.Background(), opts); err != nil {
		fail("dlq replay failed: %v", err)
	}
}

func parseOptions(args []string, errOut io.Writer) (options, error) {
	var (
		brokersRaw string
		opts       options
	)

	flags := flag.NewFlagSet("dlq-reprocess", flag.ContinueOnError)
	flags.SetOutput(errOut)
	flags.StringVar(&brokersRaw, "brokers", "", "Kafka brokers as comma-separated list (fallback: LEATHERSHOP_KAFKA_BROKERS)")
	flags.StringVar(&opts.dlqTopic, "source-topic", kafka.TopicDeadLetterQueue, "DLQ source topic")
	flags.StringVar(&opts.targetTopic, "target-topic", kafka.TopicOrderEvents, "target topic for replay")
	flags.IntVar(&opts.limit, "limit", defaultReplayLimit, "max number of messages to scan/replay")
	flags.BoolVar(&opts.execute, "execute", false, "execute replay; default is dry-run")
	flags.BoolVar(&opts.fromNewest, "from-newest", false, "scan latest messages first (bounded by limit)")
	flags.DurationVar(&opts.idleTimeout, "idle-timeout", defaultIdleTimeout, "idle timeout per partition")
	if err := flags.Parse(args); err != nil {
		return options{}, err
	}

	if strings.TrimSpace(brokersRaw) == "" {
		brokersRaw = os.Getenv("LEATHERSHOP_KAFKA_BROKERS")
	}
	for _, chunk := range strings.Split(brokersRaw, ",") {
		if broker := strings.TrimSpace(chunk); broker != "" {
			opts.brokers = append(opts.brokers, broker)
		}
	}

	switch {
	case len(opts.brokers) == 0:
		return options{}, fmt.Errorf("kafka brokers are required (-brokers or LEATHERSHOP_KAFKA_BROKERS)")
	case strings.TrimSpace(opts.dlqTopic) == "":
		return options{}, fmt.Errorf("source-topic is required")
	case strings.TrimSpace(opts.targetTopic) == "":
		return options{}, fmt.Errorf("target-topic is required")
	case opts.limit <= 0:
		return options{}, fmt.Errorf("limit must be > 0")
	case opts.idleTimeout <= 0:
		return options{}, fmt.Errorf("idle-timeout must be > 0")
	}

	return opts, nil
}

func run(ctx context.Context, opts options) error {
	offsets, readers, sender, err := connectKafka(opts)
	if err != nil {
		return err
	}
	defer func() {
		if sender != nil {
			_ = sender.Close()
		}
		if readers != nil {
			_ = readers.Close()
		}
		if offsets != nil {
			_ = offsets.Close()
		}
	}()

	r := &replayer{
		opts:    opts,
		offsets: offsets,
		readers: readers,
		sender:  sender,
		logger:  log.WithField("component", "dlq-reprocess"),
	}
	return r.run(ctx)
}

type replayer struct {
	opts    options
	offsets brokerOffsets
	readers readerFactory
	sender  eventSender
	logger  *log.Entry

	scanned  int
	replayed int
	skipped  int
}

func (r *replayer) run(ctx context.Context) error {
	if r.offsets == nil || r.readers == nil {
		return fmt.Errorf("kafka client and consumer are required")
	}
	if r.opts.execute && r.sender == nil {
		return fmt.Errorf("producer is required in execute mode")
	}

	mode := "dry-run"
	if r.opts.execute {
		mode = "execute"
	}
	r.logger.WithFields(log.Fields{
		"source_topic": r.opts.dlqTopic,
		"target_topic": r.opts.targetTopic,
		"limit":        r.opts.limit,
		"mode":         mode,
	}).Info("starting dlq replay")

	partitions, err := r.offsets.Partitions(r.opts.dlqTopic)
	if err != nil {
		return fmt.Errorf("get partitions for topic %s: %w", r.opts.dlqTopic, err)
	}
	sort.Slice(partitions, func(i, j int) bool { return partitions[i] < partitions[j] })

	for _, partition := range partitions {
		if r.scanned >= r.opts.limit {
			break
		}
		if err := r.scanPartition(ctx, partition); err != nil {
			return err
		}
	}

	r.logger.WithFields(log.Fields{
		"mode":     mode,
		"scanned":  r.scanned,
		"replayed": r.replayed,
		"skipped":  r.skipped,
	}).Info("dlq replay finished")

	return nil
}

func (r *replayer) scanPartition(ctx context.Context, partition int32) error {
	oldest, err := r.offsets.GetOffset(r.opts.dlqTopic, partition, sarama.OffsetOldest)
	if err != nil {
		return fmt.Errorf("get oldest offset for partition %d: %w", partition, err)
	}
	newest, err := r.offsets.GetOffset(r.opts.dlqTopic, partition, sarama.OffsetNewest)
	if err != nil {
		return fmt.Errorf("get newest offset for partition %d: %w", partition, err)
	}
	if newest <= oldest {
		return nil
	}

	startOffset := oldest
	if r.opts.fromNewest {
		startOffset = newest - int64(r.opts.limit-r.scanned)
		if startOffset < oldest {
			startOffset = oldest
		}
	}

	reader, err := r.readers.ConsumePartition(r.opts.dlqTopic, partition, startOffset)
	if err != nil {
		return fmt.Errorf("consume partition %d: %w", partition, err)
	}
	defer func() { _ = reader.Close() }()

	for r.scanned < r.opts.limit {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case consumerErr := <-reader.Errors():
			if consumerErr != nil {
				return fmt.Errorf("partition %d consumer error: %w", partition, consumerErr)
			}
		case msg, ok := <-reader.Messages():
			if !ok || msg == nil || msg.Offset >= newest {
				return nil
			}
			r.scanned++
			if err := r.handleMessage(msg); err != nil {
				return err
			}
			if msg.Offset+1 >= newest {
				return nil
			}
		case <-time.After(r.opts.idleTimeout):
			return nil
		}
	}

	return nil
}

func (r *replayer) handleMessage(msg *sarama.ConsumerMessage) error {
	envelope, err := replayEnvelope(msg.Value)
	if err != nil {
		r.skipped++
		r.logger.WithError(err).WithFields(log.Fields{
			"partition": msg.Partition,
			"offset":    msg.Offset,
		}).Warn("skip unsupported dlq message")
		return nil
	}

	if !r.opts.execute {
		r.logger.WithFields(log.Fields{
			"partition":    msg.Partition,
			"offset":       msg.Offset,
			"event_type":   envelope.EventType,
			"aggregate_id": envelope.AggregateID,
		}).Info("dlq replay candidate")
		r.replayed++
		return nil
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode replay envelope: %w", err)
	}
	_, _, err = r.sender.SendMessage(&sarama.ProducerMessage{
		Topic:     r.opts.targetTopic,
		Key:       sarama.StringEncoder(envelope.PartitionKey()),
		Value:     sarama.ByteEncoder(value),
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("publish replay message: %w", err)
	}
	r.replayed++
	return nil
}

// replayEnvelope разворачивает DLQ-сообщение обратно в конверт исходного
// события. DLQ хранит события в том же EventEnvelope, что и основной топик,
// но payload внутри — dlqRecord воркера с причиной отказа.
func replayEnvelope(value []byte) (kafka.EventEnvelope, error) {
	var outer kafka.EventEnvelope
	if err := json.Unmarshal(value, &outer); err != nil {
		return kafka.EventEnvelope{}, fmt.Errorf("decode dlq envelope: %w", err)
	}

	var record dlqRecord
	if err := json.Unmarshal(outer.Payload, &record); err != nil {
		return kafka.EventEnvelope{}, fmt.Errorf("decode dlq record: %w", err)
	}
	if len(record.Payload) == 0 {
		return kafka.EventEnvelope{}, fmt.Errorf("dlq record has no original event payload")
	}

	return kafka.EventEnvelope{
		EventID:       firstNonEmpty(record.OutboxID, outer.EventID),
		AggregateType: firstNonEmpty(record.AggregateType, outer.AggregateType),
		AggregateID:   firstNonEmpty(record.AggregateID, outer.AggregateID),
		EventType:     firstNonEmpty(record.EventType, outer.EventType),
		Payload:       record.Payload,
		PublishedAt:   time.Now().UTC(),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
