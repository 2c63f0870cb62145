// Package mailer wraps the marketing-platform REST API used to keep the
// mailing list in sync with website signups.
//
// The platform has no native upsert, so CreateOrUpdate runs a two-step
// protocol: attempt a create, and when the address already exists as a list
// member, fall back to an update addressed by the subscriber hash. The hash
// is derived from the lowercased email, so the same address always maps to
// the same remote record no matter which form submitted it.
package mailer

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const httpTimeout = 15 * time.Second

// memberExistsTitle is the error title the platform returns when a create
// collides with an existing list member.
const memberExistsTitle = "Member Exists"

// Outcome reports which path an upsert took.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
)

// SyncResult is the remote record state after a successful upsert.
type SyncResult struct {
	Outcome Outcome
	ID      string
	Email   string
	Status  string
}

// MergeFields carries the optional profile fields attached to a contact.
// Empty fields are omitted from the request; the remote update merges fields
// rather than replacing them.
type MergeFields struct {
	FirstName string
	LastName  string
	Company   string
	Role      string
	Budget    string
}

// RemoteError is any non-conflict failure reported by the platform.
type RemoteError struct {
	Action     string // "create member" / "update member"
	StatusCode int
	Title      string
}

func (e *RemoteError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("mailer: %s returned %d (%s)", e.Action, e.StatusCode, e.Title)
	}
	return fmt.Sprintf("mailer: %s returned %d", e.Action, e.StatusCode)
}

// Client talks to one audience of the marketing platform.
type Client struct {
	apiKey     string
	audienceID string
	baseURL    string
	client     *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// New constructs a Client for the audience hosted on the given server prefix
// (for example "us14").
func New(apiKey, serverPrefix, audienceID string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		audienceID: audienceID,
		baseURL:    fmt.Sprintf("https://%s.api.movrrmail.com/3.0", serverPrefix),
		client:     &http.Client{Timeout: httpTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubscriberHash derives the stable per-address member identifier: the hex
// MD5 of the trimmed, lowercased email.
func SubscriberHash(email string) string {
	norm := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(norm))
	return hex.EncodeToString(sum[:])
}

// memberPayload mirrors the request body for member create and update.
type memberPayload struct {
	EmailAddress string            `json:"email_address"`
	Status       string            `json:"status"`
	MergeFields  map[string]string `json:"merge_fields,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
}

// memberResponse mirrors the subset of the member resource we read back.
type memberResponse struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
	Status       string `json:"status"`
}

// apiError mirrors the platform's problem-details error body.
type apiError struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// CreateOrUpdate upserts a contact: create first, and on a "member exists"
// conflict update the record at its derived hash, re-sending the same fields
// and tags. The tags passed are the authoritative set for this call.
//
// A conflict on the update path is not retried further and surfaces as a
// *RemoteError, as does any other non-success response.
func (c *Client) CreateOrUpdate(ctx context.Context, email string, merge MergeFields, tags []string) (*SyncResult, error) {
	payload := memberPayload{
		EmailAddress: strings.ToLower(strings.TrimSpace(email)),
		Status:       "subscribed",
		MergeFields:  merge.toMap(),
		Tags:         tags,
	}

	createURL := fmt.Sprintf("%s/lists/%s/members", c.baseURL, c.audienceID)
	member, apiErr, err := c.do(ctx, http.MethodPost, createURL, payload)
	if err != nil {
		return nil, err
	}
	if apiErr == nil {
		return &SyncResult{Outcome: OutcomeCreated, ID: member.ID, Email: member.EmailAddress, Status: member.Status}, nil
	}
	if apiErr.Title != memberExistsTitle {
		return nil, &RemoteError{Action: "create member", StatusCode: apiErr.Status, Title: apiErr.Title}
	}

	updateURL := fmt.Sprintf("%s/lists/%s/members/%s", c.baseURL, c.audienceID, SubscriberHash(email))
	member, apiErr, err = c.do(ctx, http.MethodPatch, updateURL, payload)
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		return nil, &RemoteError{Action: "update member", StatusCode: apiErr.Status, Title: apiErr.Title}
	}
	return &SyncResult{Outcome: OutcomeUpdated, ID: member.ID, Email: member.EmailAddress, Status: member.Status}, nil
}

// do performs one API call. A non-2xx response is returned as an *apiError
// (not a Go error) so the caller can distinguish the conflict case; transport
// failures are returned as errors.
func (c *Client) do(ctx context.Context, method, url string, payload memberPayload) (*memberResponse, *apiError, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal member payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("site-api", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ae apiError
		if err := json.Unmarshal(raw, &ae); err != nil || ae.Status == 0 {
			ae = apiError{Status: resp.StatusCode}
		}
		return nil, &ae, nil
	}

	var member memberResponse
	if err := json.Unmarshal(raw, &member); err != nil {
		return nil, nil, fmt.Errorf("json unmarshal member: %w", err)
	}
	return &member, nil, nil
}

func (m MergeFields) toMap() map[string]string {
	out := map[string]string{}
	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set("FNAME", m.FirstName)
	set("LNAME", m.LastName)
	set("COMPANY", m.Company)
	set("ROLE", m.Role)
	set("BUDGET", m.Budget)
	if len(out) == 0 {
		return nil
	}
	return out
}
