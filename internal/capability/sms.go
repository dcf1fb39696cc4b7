package capability

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

// SMSCapability sends a text message to the first phone number found in the
// instruction. Twilio's client has no context plumbing, so the ctx parameter
// is accepted for interface symmetry only.
type SMSCapability struct {
	client *twilio.RestClient
	from   string
}

func NewSMSCapability(cfg TwilioConfig) *SMSCapability {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return &SMSCapability{}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &SMSCapability{client: client, from: cfg.From}
}

func (c *SMSCapability) Name() Name { return Communication }

func (c *SMSCapability) Invoke(_ context.Context, instruction string) (string, error) {
	d, ok := ParseSMSDirective(instruction)
	if !ok {
		return "", &ParseError{Capability: Communication, Reason: "no valid phone number found in instruction"}
	}
	if c.client == nil {
		return "", &ConfigError{Capability: Communication, Missing: "Twilio credentials"}
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(d.To)
	params.SetFrom(c.from)
	params.SetBody(d.Body)

	msg, err := c.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("send SMS to %s: %w", d.To, err)
	}

	sid := ""
	if msg.Sid != nil {
		sid = *msg.Sid
	}
	return fmt.Sprintf("SMS sent! SID: %s", sid), nil
}
