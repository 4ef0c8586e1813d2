package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	StreamName     = "SOCIAL"
	SubjectPrefix  = "social."
	SubjectPattern = SubjectPrefix + ">"
)

type streamPublisher interface {
	CreateOrUpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

var (
	natsConnect = func(url string) (*nats.Conn, error) {
		return nats.Connect(url, nats.Name("twitter-api"))
	}

	newJetStream = func(nc *nats.Conn) (streamPublisher, error) {
		return jetstream.New(nc)
	}
)

type NatsPublisher struct {
	nc *nats.Conn
	js streamPublisher
}

// NewNatsPublisher connects and makes sure the stream exists.
func NewNatsPublisher(ctx context.Context, url string) (*NatsPublisher, error) {
	nc, err := natsConnect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := newJetStream(nc)
	if err != nil {
		closeConn(nc)
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	if err := ensureStream(ctx, js); err != nil {
		closeConn(nc)
		return nil, err
	}

	return &NatsPublisher{nc: nc, js: js}, nil
}

func ensureStream(ctx context.Context, js streamPublisher) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectPattern},
		Storage:  jetstream.FileStorage,
		Replicas: 1,
	})
	if err != nil {
		return fmt.Errorf("create stream: %w", err)
	}
	return nil
}

func (p *NatsPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, SubjectPrefix+string(e.Type), data); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

func (p *NatsPublisher) Close() error {
	closeConn(p.nc)
	return nil
}

func closeConn(nc *nats.Conn) {
	if nc != nil {
		nc.Close()
	}
}
