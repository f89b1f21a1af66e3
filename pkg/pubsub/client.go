package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Role selects which side of the mail queue a process needs.
type Role int

const (
	// RolePublisher needs the mail topic (the API).
	RolePublisher Role = iota
	// RoleSubscriber needs the mail subscription (the worker).
	RoleSubscriber
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errTopicRequired     = errors.New("pubsub mail topic is required")
	errSubRequired       = errors.New("pubsub mail subscription is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// Client wraps a Pub/Sub v2 client bound to the mail queue.
type Client struct {
	client    *pubsub.Client
	projectID string
	cfg       config.PubSubConfig
	role      Role
}

// NewClient dials Pub/Sub and checks that the resource role needs exists.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, role Role, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	if err := validate(cfg, role); err != nil {
		return nil, err
	}

	psClient, err := pubsub.NewClient(ctx, projectID, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c := &Client{client: psClient, projectID: projectID, cfg: cfg, role: role}
	if err := c.Ping(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "resource", c.checkedResource()), "pubsub client initialized")
	}
	return c, nil
}

func validate(cfg config.PubSubConfig, role Role) error {
	switch role {
	case RolePublisher:
		if strings.TrimSpace(cfg.MailTopic) == "" {
			return errTopicRequired
		}
	case RoleSubscriber:
		if strings.TrimSpace(cfg.MailSubscription) == "" {
			return errSubRequired
		}
	default:
		return fmt.Errorf("unknown pubsub role %d", role)
	}
	return nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(gcp.CredentialsJSON))}
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		return []option.ClientOption{option.WithCredentialsFile(gcp.ApplicationCredentials)}
	}
	return nil
}

// Ping checks the topic or subscription for the client's role still exists.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	name := c.checkedResource()
	var err error
	if c.role == RoleSubscriber {
		_, err = c.client.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: name})
	} else {
		_, err = c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: name})
	}
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s does not exist", name)
	}
	return fmt.Errorf("checking %s: %w", name, err)
}

func (c *Client) checkedResource() string {
	if c.role == RoleSubscriber {
		return resourceName(c.projectID, "subscriptions", c.cfg.MailSubscription)
	}
	return resourceName(c.projectID, "topics", c.cfg.MailTopic)
}

// MailSubscription returns the subscriber for queued outbound email.
func (c *Client) MailSubscription() *pubsub.Subscriber {
	if c == nil || c.client == nil {
		return nil
	}
	name := resourceName(c.projectID, "subscriptions", c.cfg.MailSubscription)
	if name == "" {
		return nil
	}
	return c.client.Subscriber(name)
}

// MailPublisher returns the publisher for queued outbound email.
func (c *Client) MailPublisher() *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	name := resourceName(c.projectID, "topics", c.cfg.MailTopic)
	if name == "" {
		return nil
	}
	return c.client.Publisher(name)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// resourceName expands a short id into projects/<p>/<kind>/<id>. Full
// resource names pass through unchanged.
func resourceName(projectID, kind, name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/"+kind+"/") {
		return n
	}
	p := strings.TrimSpace(projectID)
	if p == "" {
		return ""
	}
	return "projects/" + p + "/" + kind + "/" + n
}
