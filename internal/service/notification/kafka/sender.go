package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/KNICEX/stock-monitor/internal/service/notification"
	kafkaGO "github.com/segmentio/kafka-go"
)

var _ notification.Sender = (*Sender)(nil)

// Message 写入 kafka 的预警消息体
type Message struct {
	Channel string    `json:"channel"`
	Text    string    `json:"text"`
	SentAt  time.Time `json:"sent_at"`
}

// Writer *kafkaGO.Writer 的子集, 便于测试替换
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGO.Message) error
	Close() error
}

// Sender 把预警投递到 kafka, 由下游服务再分发
type Sender struct {
	writer Writer
	now    func() time.Time
}

func NewWriter(brokers []string, topic string) *kafkaGO.Writer {
	return &kafkaGO.Writer{
		Addr:         kafkaGO.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkaGO.LeastBytes{},
		RequiredAcks: kafkaGO.RequireOne,
		WriteTimeout: 10 * time.Second,
	}
}

func NewSender(writer Writer) *Sender {
	return &Sender{
		writer: writer,
		now:    time.Now,
	}
}

func (s *Sender) Send(ctx context.Context, channel, text string) error {
	value, err := json.Marshal(Message{Channel: channel, Text: text, SentAt: s.now()})
	if err != nil {
		return err
	}
	err = s.writer.WriteMessages(ctx, kafkaGO.Message{
		Key:   []byte(channel),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("kafka notification %s: %w", channel, err)
	}
	return nil
}

func (s *Sender) Close() error {
	return s.writer.Close()
}
