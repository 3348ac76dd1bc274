// Package pubsub connects the outbox publisher to the order events topic.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/config"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("pubsub: gcp project id required")
	errTopicRequired     = errors.New("pubsub: orders topic required")
	errClosed            = errors.New("pubsub: client not initialized")
)

type Client struct {
	ps           *pubsub.Client
	topic        string
	subscription string
}

// NewClient dials Pub/Sub and refuses to start unless the orders topic exists.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, errProjectIDRequired
	}
	topic := qualify(project, "topics", cfg.OrdersTopic)
	if topic == "" {
		return nil, errTopicRequired
	}

	ps, err := pubsub.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("pubsub: dial: %w", err)
	}
	c := &Client{
		ps:           ps,
		topic:        topic,
		subscription: qualify(project, "subscriptions", cfg.OrdersSubscription),
	}
	if err := c.Ping(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "topic", topic), "pubsub ready")
	}
	return c, nil
}

// OrdersPublisher returns the order events publisher with ordering keys enabled.
func (c *Client) OrdersPublisher() *pubsub.Publisher {
	if c == nil || c.ps == nil {
		return nil
	}
	p := c.ps.Publisher(c.topic)
	p.EnableMessageOrdering = true
	return p
}

// Ping checks that the topic, and the subscription when one is configured, exist.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.ps == nil {
		return errClosed
	}
	_, err := c.ps.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: c.topic})
	if err = describe("topic", c.topic, err); err != nil || c.subscription == "" {
		return err
	}
	_, err = c.ps.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: c.subscription})
	return describe("subscription", c.subscription, err)
}

func (c *Client) Close() error {
	if c == nil || c.ps == nil {
		return nil
	}
	return c.ps.Close()
}

func describe(kind, name string, err error) error {
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("pubsub: %s %s not found", kind, name)
	default:
		return fmt.Errorf("pubsub: get %s %s: %w", kind, name, err)
	}
}

// qualify expands a short topic or subscription ID into its resource name.
func qualify(project, kind, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "projects/") && strings.Contains(name, "/"+kind+"/") {
		return name
	}
	return "projects/" + project + "/" + kind + "/" + name
}
