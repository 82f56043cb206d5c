package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/classmart/inventory-service/internal/alert"
	"github.com/classmart/inventory-service/pkg/broker"
)

type KafkaNotifier struct {
	producer *broker.KafkaProducer
}

func NewKafkaNotifier(producer *broker.KafkaProducer) *KafkaNotifier {
	return &KafkaNotifier{producer: producer}
}

// Notify publishes the transition keyed by (tenant, product) so all events for
// one item land on the same partition, in order.
func (n *KafkaNotifier) Notify(ctx context.Context, event *alert.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s:%s", event.TenantID, event.ProductID)
	return n.producer.Publish(ctx, []byte(key), value)
}
