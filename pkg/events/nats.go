package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	mgerrors "github.com/matzehuels/modelgraph/pkg/errors"
)

// NATSPublisher publishes events to NATS subjects as JSON.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the NATS server at url. Extra nats.Option
// values are appended to the reconnect defaults.
func NewNATSPublisher(url string, opts ...nats.Option) (*NATSPublisher, error) {
	if err := mgerrors.ValidateURL(url, "nats", "tls"); err != nil {
		return nil, err
	}
	defaults := []nats.Option{
		nats.Name("modelgraph"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeNetwork, err, "connecting to NATS at %s", url)
	}
	return &NATSPublisher{conn: nc}, nil
}

// Publish wraps event in an [Event] envelope unless it already is one and
// sends it to topic.
func (p *NATSPublisher) Publish(ctx context.Context, topic string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env, ok := event.(Event)
	if !ok {
		env = New(topic, event)
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	return p.conn.Publish(topic, data)
}

// Flush waits until the server has processed all published messages.
func (p *NATSPublisher) Flush() error {
	return p.conn.Flush()
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
	return nil
}
