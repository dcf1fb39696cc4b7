package capability

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tmc/langchaingo/tools/duckduckgo"
)

const (
	searchResultCount = 3
	pageContentLimit  = 4000
)

// SearchCapability answers queries from the live web. Plain queries go
// through DuckDuckGo; an instruction that is itself a URL is fetched
// directly and reduced to readable text.
type SearchCapability struct {
	ddg       *duckduckgo.Tool
	client    *http.Client
	sanitizer *bluemonday.Policy
	userAgent string
}

func NewSearchCapability() (*SearchCapability, error) {
	ddg, err := duckduckgo.New(searchResultCount, duckduckgo.DefaultUserAgent)
	if err != nil {
		return nil, fmt.Errorf("init search client: %w", err)
	}
	return &SearchCapability{
		ddg:       ddg,
		client:    &http.Client{Timeout: 30 * time.Second},
		sanitizer: bluemonday.StrictPolicy(),
		userAgent: duckduckgo.DefaultUserAgent,
	}, nil
}

func (c *SearchCapability) Name() Name { return Search }

func (c *SearchCapability) Invoke(ctx context.Context, instruction string) (string, error) {
	query := StripQueryPrefix(instruction)

	if strings.HasPrefix(query, "http://") || strings.HasPrefix(query, "https://") {
		return c.readPage(ctx, query)
	}

	res, err := c.ddg.Call(ctx, query)
	if err != nil {
		return "", fmt.Errorf("web search for %q: %w", query, err)
	}
	if strings.TrimSpace(res) == "" {
		return fmt.Sprintf("No search results found on the web for '%s'.", query), nil
	}
	return res, nil
}

// readPage fetches a URL and extracts the article body as sanitized text.
func (c *SearchCapability) readPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", fmt.Errorf("extract article from %s: %w", pageURL, err)
	}

	content := c.sanitizer.Sanitize(article.TextContent)
	if len(content) > pageContentLimit {
		content = content[:pageContentLimit] + "\n... (content truncated) ..."
	}
	return fmt.Sprintf("%s: %s", article.Title, strings.TrimSpace(content)), nil
}
