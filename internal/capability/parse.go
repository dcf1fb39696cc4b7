package capability

import (
	"regexp"
	"strings"
	"time"
)

// The planner writes instructions in loose natural language, so every
// extraction here is a best-effort regex, not a grammar. A failed match is
// reported to the caller; it never aborts the plan.

var (
	slackRe     = regexp.MustCompile(`(?i)post\s+["'` + "“”‘’" + `](.+?)["'` + "“”‘’" + `]\s+to\s+(#\S+)`)
	phoneRe     = regexp.MustCompile(`(\+?\d[\d\s-]{9,15})`)
	eventRe     = regexp.MustCompile(`(?i)schedule\s+(?:a\s+)?(.+?)\s+for`)
	addRe       = regexp.MustCompile(`(?i)knowledge:\s*['"` + "“”‘’" + `](.+?)['"` + "“”‘’" + `]\s*in\s+(\S+)`)
	queryPrefix = regexp.MustCompile(`(?i)^(search for|find|tell me about|SearchAgent|KnowledgeAgent)\s+`)
)

// SlackDirective is a parsed `Post "message" to #channel` instruction.
type SlackDirective struct {
	Message string
	Channel string
}

// ParseSlackDirective extracts the message text and target channel.
// Straight and curly quotes are both accepted.
func ParseSlackDirective(instruction string) (SlackDirective, bool) {
	m := slackRe.FindStringSubmatch(instruction)
	if m == nil {
		return SlackDirective{}, false
	}
	return SlackDirective{Message: m[1], Channel: m[2]}, true
}

// SMSDirective is a parsed outbound text message: a normalized destination
// number and a body capped at the single-segment SMS limit.
type SMSDirective struct {
	To   string
	Body string
}

const smsBodyLimit = 160

// ParseSMSDirective finds the first phone-shaped substring, normalizes it to
// a +-prefixed number, and takes everything after it as the message body.
func ParseSMSDirective(instruction string) (SMSDirective, bool) {
	m := phoneRe.FindStringSubmatch(instruction)
	if m == nil {
		return SMSDirective{}, false
	}

	to := strings.NewReplacer(" ", "", "-", "").Replace(m[1])
	if !strings.HasPrefix(to, "+") {
		to = "+" + to
	}

	// Body is whatever follows the matched number, minus the leading
	// punctuation the planner tends to put between number and message.
	// The cap counts characters, not bytes: a multi-byte body must not be
	// cut mid-rune.
	idx := strings.Index(instruction, m[1])
	body := strings.Trim(instruction[idx+len(m[1]):], ": ")
	if runes := []rune(body); len(runes) > smsBodyLimit {
		body = string(runes[:smsBodyLimit])
	}

	return SMSDirective{To: to, Body: body}, true
}

// EventDirective is a parsed calendar instruction. The timing here is a
// known simplification, not a real time parser: "tomorrow" means tomorrow
// at 10:00 local, anything else means half an hour from now snapped to
// 10:00, and every event lasts one hour.
type EventDirective struct {
	Title string
	Start time.Time
	End   time.Time
}

// ParseEventDirective always succeeds; a missing title falls back to
// "Meeting".
func ParseEventDirective(instruction string, now time.Time) EventDirective {
	title := "Meeting"
	if m := eventRe.FindStringSubmatch(instruction); m != nil {
		title = strings.TrimSpace(m[1])
	}

	start := now.Add(30 * time.Minute)
	if strings.Contains(strings.ToLower(instruction), "tomorrow") {
		start = now.AddDate(0, 0, 1)
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 10, 0, 0, 0, start.Location())

	return EventDirective{Title: title, Start: start, End: start.Add(time.Hour)}
}

// AddDirective is a parsed `Add knowledge: 'content' in filename`
// instruction.
type AddDirective struct {
	Filename string
	Content  string
}

// IsAddDirective distinguishes a knowledge write from a knowledge query.
func IsAddDirective(instruction string) bool {
	return strings.Contains(strings.ToLower(instruction), "add knowledge")
}

// ParseAddDirective extracts the content and target record name, tolerant of
// quote style.
func ParseAddDirective(instruction string) (AddDirective, bool) {
	m := addRe.FindStringSubmatch(instruction)
	if m == nil {
		return AddDirective{}, false
	}
	return AddDirective{Content: m[1], Filename: m[2]}, true
}

// StripQueryPrefix removes the filler the planner prepends to search and
// knowledge queries ("Search for ...", "Tell me about ...", the agent name)
// so the underlying service sees only the query itself.
func StripQueryPrefix(instruction string) string {
	return strings.TrimSpace(queryPrefix.ReplaceAllString(instruction, ""))
}
