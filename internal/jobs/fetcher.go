package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	leverBaseURL = "https://api.lever.co/v0/postings"
	httpTimeout  = 15 * time.Second
)

// Fetcher retrieves the current set of open positions from the ATS.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Job, error)
}

// NewFetcher selects the fetcher for the configured provider. An empty
// provider disables listings: the careers page simply shows no openings.
func NewFetcher(provider, site, apiKey string) (Fetcher, error) {
	switch provider {
	case "":
		return disabledFetcher{}, nil
	case "lever":
		return NewLeverFetcher(site, apiKey), nil
	default:
		return nil, fmt.Errorf("unknown ATS provider %q", provider)
	}
}

// disabledFetcher is used when no ATS is configured.
type disabledFetcher struct{}

func (disabledFetcher) Fetch(context.Context) ([]Job, error) {
	return []Job{}, nil
}

// LeverFetcher reads the public postings feed of a Lever-hosted job board.
// If the site slug is empty, Fetch returns an empty set gracefully and logs
// a warning, so an unconfigured environment still boots.
type LeverFetcher struct {
	site    string
	apiKey  string
	baseURL string
	client  *http.Client
}

// LeverOption customises a LeverFetcher.
type LeverOption func(*LeverFetcher)

// WithLeverBaseURL overrides the postings feed base URL. Used by tests.
func WithLeverBaseURL(u string) LeverOption {
	return func(f *LeverFetcher) { f.baseURL = strings.TrimRight(u, "/") }
}

// NewLeverFetcher constructs a fetcher with a shared HTTP client.
func NewLeverFetcher(site, apiKey string, opts ...LeverOption) *LeverFetcher {
	f := &LeverFetcher{
		site:    site,
		apiKey:  apiKey,
		baseURL: leverBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// leverPosting mirrors a single posting in the feed.
type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Categories struct {
		Team       string `json:"team"`
		Location   string `json:"location"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
	Lists []struct {
		Text    string `json:"text"`
		Content string `json:"content"`
	} `json:"lists"`
	DescriptionPlain string `json:"descriptionPlain"`
	CreatedAt        int64  `json:"createdAt"` // unix milliseconds
	HostedURL        string `json:"hostedUrl"`
}

// Fetch implements Fetcher.
func (f *LeverFetcher) Fetch(ctx context.Context) ([]Job, error) {
	if f.site == "" {
		log.Println("[jobs] ATS_SITE not set — serving an empty listing")
		return []Job{}, nil
	}

	reqURL := fmt.Sprintf("%s/%s?mode=json", f.baseURL, f.site)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if f.apiKey != "" {
		req.SetBasicAuth(f.apiKey, "")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ats returned %d: %s", resp.StatusCode, string(body))
	}

	var postings []leverPosting
	if err := json.Unmarshal(body, &postings); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	jobsOut := make([]Job, 0, len(postings))
	for _, p := range postings {
		job := Job{
			ID:               p.ID,
			Title:            p.Text,
			Department:       p.Categories.Team,
			Location:         p.Categories.Location,
			Type:             p.Categories.Commitment,
			Description:      p.DescriptionPlain,
			Requirements:     []string{},
			Responsibilities: []string{},
			Benefits:         []string{},
			ATSURL:           p.HostedURL,
		}
		if p.CreatedAt > 0 {
			job.Posted = time.UnixMilli(p.CreatedAt).UTC()
		}
		for _, list := range p.Lists {
			header := strings.ToLower(list.Text)
			switch {
			case strings.Contains(header, "requirement") || strings.Contains(header, "qualification"):
				job.Requirements = append(job.Requirements, listItems(list.Content)...)
			case strings.Contains(header, "responsibilit") || strings.Contains(header, "what you"):
				job.Responsibilities = append(job.Responsibilities, listItems(list.Content)...)
			case strings.Contains(header, "benefit") || strings.Contains(header, "perk"):
				job.Benefits = append(job.Benefits, listItems(list.Content)...)
			}
		}
		jobsOut = append(jobsOut, job)
	}

	return jobsOut, nil
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// listItems splits a Lever HTML list body into plain-text items.
func listItems(content string) []string {
	var items []string
	for _, chunk := range strings.Split(content, "</li>") {
		item := strings.TrimSpace(tagPattern.ReplaceAllString(chunk, ""))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
