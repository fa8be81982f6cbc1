package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	published  []published
	declareErr error
	publishErr error
	closed     bool
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	if c.declareErr != nil {
		return c.declareErr
	}
	c.declared = append(c.declared, name+":"+kind)
	return nil
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestRabbitPublisher_DeclaresAndPublishes(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newRabbitPublisher(ch, "")
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultExchange + ":topic"}, ch.declared)

	ev := NewOrderPlaced(&domain.UserInfo{ID: "u1"}, sampleOrder(), time.Now())
	require.NoError(t, p.PublishOrderPlaced(context.Background(), ev))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, DefaultExchange, got.exchange)
	assert.Equal(t, OrderPlacedRoutingKey, got.key)
	assert.Equal(t, "ord-1", got.msg.MessageId)
	assert.Equal(t, EventOrderPlaced, got.msg.Type)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)

	var decoded OrderPlaced
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, "u1", decoded.UserID)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestRabbitPublisher_DeclareError(t *testing.T) {
	_, err := newRabbitPublisher(&fakeChannel{declareErr: errors.New("access refused")}, "orders")
	assert.ErrorContains(t, err, "declare orders")
}

func TestRabbitPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: amqp.ErrClosed}
	p, err := newRabbitPublisher(ch, "")
	require.NoError(t, err)

	err = p.PublishOrderPlaced(context.Background(), OrderPlaced{OrderID: "ord-9"})
	assert.ErrorIs(t, err, amqp.ErrClosed)
	assert.ErrorContains(t, err, "ord-9")
}

type countingPublisher struct {
	calls int
	err   error
}

func (c *countingPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error {
	c.calls++
	return c.err
}

func TestMulti_TriesEveryPublisher(t *testing.T) {
	failing := &countingPublisher{err: errors.New("broker down")}
	ok := &countingPublisher{}

	err := Multi{failing, ok}.PublishOrderPlaced(context.Background(), OrderPlaced{OrderID: "ord-1"})

	assert.ErrorContains(t, err, "broker down")
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)
	assert.NoError(t, Multi{}.PublishOrderPlaced(context.Background(), OrderPlaced{}))
}

func TestRabbitPublisher_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-alpine",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5672")
	require.NoError(t, err)

	conn, err := amqp.DialConfig("amqp://"+host+":"+port.Port()+"/", amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	require.NoError(t, err)
	defer conn.Close()

	p, err := NewRabbitPublisher(conn, "storefront.test")
	require.NoError(t, err)
	defer p.Close()

	consumer, err := conn.Channel()
	require.NoError(t, err)
	defer consumer.Close()
	q, err := consumer.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, consumer.QueueBind(q.Name, OrderPlacedRoutingKey, "storefront.test", false, nil))
	deliveries, err := consumer.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	ev := NewOrderPlaced(&domain.UserInfo{ID: "u1"}, sampleOrder(), time.Now())
	require.NoError(t, p.PublishOrderPlaced(ctx, ev))

	select {
	case d := <-deliveries:
		assert.Equal(t, "ord-1", d.MessageId)
		var got OrderPlaced
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, ev.OrderID, got.OrderID)
	case <-ctx.Done():
		t.Fatal("order event was not delivered")
	}
}
