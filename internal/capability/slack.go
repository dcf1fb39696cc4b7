package capability

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

type SlackConfig struct {
	Token string
}

// SlackCapability posts plan-authored messages to a channel. Without a bot
// token it still constructs, but every invoke degrades to a configuration
// failure.
type SlackCapability struct {
	client *slack.Client
}

func NewSlackCapability(cfg SlackConfig) *SlackCapability {
	if cfg.Token == "" {
		return &SlackCapability{}
	}
	return &SlackCapability{client: slack.New(cfg.Token)}
}

func (c *SlackCapability) Name() Name { return Slack }

func (c *SlackCapability) Invoke(ctx context.Context, instruction string) (string, error) {
	d, ok := ParseSlackDirective(instruction)
	if !ok {
		return "", &ParseError{Capability: Slack, Reason: `expected format 'Post "message" to #channel'`}
	}
	if c.client == nil {
		return "", &ConfigError{Capability: Slack, Missing: "bot token"}
	}

	_, _, err := c.client.PostMessageContext(ctx, d.Channel, slack.MsgOptionText(d.Message, false))
	if err != nil {
		return "", fmt.Errorf("post to %s: %w", d.Channel, err)
	}
	return fmt.Sprintf("Message successfully posted to %s", d.Channel), nil
}
