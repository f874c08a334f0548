// Package kafka builds the franz-go client used for contact events and makes
// sure the topic exists.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"crm/internal/platform/config"
)

// Client is a producer client plus an admin client sharing its connections.
type Client struct {
	*kgo.Client
	admin *kadm.Client
}

// New connects to cfg.Brokers and, when cfg.CreateTopic is set, creates the
// topic if it is missing.
func New(ctx context.Context, cfg config.KafkaConfig) (*Client, error) {
	kc, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	c := &Client{Client: kc, admin: kadm.NewClient(kc)}

	if err := c.Ping(ctx); err != nil {
		kc.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	if cfg.CreateTopic {
		if err := c.EnsureTopic(ctx, cfg.Topic, cfg.Partitions); err != nil {
			kc.Close()
			return nil, err
		}
	}
	return c, nil
}

// EnsureTopic creates topic with the broker's default replication factor.
// An existing topic is not an error.
func (c *Client) EnsureTopic(ctx context.Context, topic string, partitions int32) error {
	if partitions <= 0 {
		partitions = 1
	}
	resp, err := c.admin.CreateTopic(ctx, partitions, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, resp.Err)
	}
	return nil
}

// Health pings the cluster.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx)
}
