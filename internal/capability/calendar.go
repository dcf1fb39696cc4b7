package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type CalendarConfig struct {
	CredentialsPath string
	TokenPath       string
	TimeZone        string
}

// CalendarCapability creates a one-hour event from a loosely parsed
// scheduling instruction. It expects an already-authorized OAuth token on
// disk; there is no interactive flow here, a missing token is a
// configuration failure like any other.
type CalendarCapability struct {
	cfg CalendarConfig
}

func NewCalendarCapability(cfg CalendarConfig) *CalendarCapability {
	if cfg.TimeZone == "" {
		cfg.TimeZone = "Asia/Kolkata"
	}
	return &CalendarCapability{cfg: cfg}
}

func (c *CalendarCapability) Name() Name { return Calendar }

func (c *CalendarCapability) Invoke(ctx context.Context, instruction string) (string, error) {
	d := ParseEventDirective(instruction, time.Now())

	svc, err := c.service(ctx)
	if err != nil {
		return "", err
	}

	event := &calendarapi.Event{
		Summary: d.Title,
		Start: &calendarapi.EventDateTime{
			DateTime: d.Start.Format(time.RFC3339),
			TimeZone: c.cfg.TimeZone,
		},
		End: &calendarapi.EventDateTime{
			DateTime: d.End.Format(time.RFC3339),
			TimeZone: c.cfg.TimeZone,
		},
	}

	created, err := svc.Events.Insert("primary", event).Do()
	if err != nil {
		return "", fmt.Errorf("insert event %q: %w", d.Title, err)
	}
	return fmt.Sprintf("Event created: %s", created.HtmlLink), nil
}

func (c *CalendarCapability) service(ctx context.Context) (*calendarapi.Service, error) {
	creds, err := os.ReadFile(c.cfg.CredentialsPath)
	if err != nil {
		return nil, &ConfigError{Capability: Calendar, Missing: "credentials.json"}
	}

	conf, err := google.ConfigFromJSON(creds, calendarapi.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	raw, err := os.ReadFile(c.cfg.TokenPath)
	if err != nil {
		return nil, &ConfigError{Capability: Calendar, Missing: "token.json (authorize the app first)"}
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	svc, err := calendarapi.NewService(ctx, option.WithHTTPClient(conf.Client(ctx, &tok)))
	if err != nil {
		return nil, fmt.Errorf("build calendar client: %w", err)
	}
	return svc, nil
}
