package rabbitmq

import (
	"testing"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLogEvent(t *testing.T) {
	handle := LogEvent(zap.NewNop())

	err := handle(amqp.Delivery{Body: []byte(`{"type":"product.created","data":{"productId":"p1"}}`)})
	assert.NoError(t, err)

	err = handle(amqp.Delivery{Body: []byte(`not json`)})
	assert.Error(t, err)
}

func TestClientWithoutChannel(t *testing.T) {
	c := &Client{queue: DefaultQueue, logger: zap.NewNop()}

	assert.Error(t, c.Publish("product.created", map[string]string{"id": "p1"}))
	assert.Error(t, c.ConsumeEvents(func(amqp.Delivery) error { return nil }))
	assert.NoError(t, c.Close())
}
