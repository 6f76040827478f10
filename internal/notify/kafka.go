package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"craftmarket/internal/models"
)

// Event is the payload published for each notification.
type Event struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type Publisher interface {
	Publish(ctx context.Context, batch []models.Notification) error
}

type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaPublisher{client: client, topic: topic}, nil
}

// Publish produces the batch synchronously, keyed by user id so a user's
// events stay ordered within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, batch []models.Notification) error {
	records := make([]*kgo.Record, 0, len(batch))
	for _, n := range batch {
		value, err := json.Marshal(toEvent(n))
		if err != nil {
			return err
		}
		records = append(records, &kgo.Record{
			Topic: p.topic,
			Key:   []byte(strconv.FormatInt(n.UserID, 10)),
			Value: value,
		})
	}
	return p.client.ProduceSync(ctx, records...).FirstErr()
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}

func toEvent(n models.Notification) Event {
	return Event{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	}
}
