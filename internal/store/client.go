// Package store reads and writes the schedule CSV as a versioned blob
// through the GitHub contents API.
//
// Concurrency model: the content sha acts as a compare-and-swap token.
// Write always re-resolves the current sha immediately before the PUT, so
// the freshest known token is attached. This shrinks, but does not close,
// the lost-update window between two near-simultaneous writers; a stale
// token is rejected by the store and surfaced raw, never retried.
package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appLog "schedcal/internal/log"
	"schedcal/internal/model"
)

// ErrMissingToken is returned when a write is attempted without a
// credential. Writes are refused outright, not attempted anonymously.
var ErrMissingToken = errors.New("store: no API token configured; remote is read-only")

// RemoteError is a non-success response from the content store, carried
// verbatim for operator display. A stale-sha conflict arrives this way.
type RemoteError struct {
	Op         string // "fetch" or "write"
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("store: %s failed: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Options configures a Client. All remote coordinates are explicit; the
// client never consults ambient globals.
type Options struct {
	Owner  string
	Repo   string
	Path   string // file path inside the repository, e.g. "schedule.csv"
	Branch string
	Token  string // empty enables read-only mirror mode

	// APIBase / RawBase default to github.com endpoints. Tests point them
	// at a local server.
	APIBase string
	RawBase string
}

// Client is the remote store client. Safe for sequential use; operations
// are blocking request-response calls with the transport's 15s timeout.
type Client struct {
	opts   Options
	client *http.Client
}

// New creates a Client from explicit options.
func New(opts Options) *Client {
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	if opts.APIBase == "" {
		opts.APIBase = "https://api.github.com"
	}
	if opts.RawBase == "" {
		opts.RawBase = "https://raw.githubusercontent.com"
	}
	return &Client{
		opts: opts,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CanWrite reports whether a credential is configured.
func (c *Client) CanWrite() bool {
	return c.opts.Token != ""
}

func (c *Client) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		strings.TrimRight(c.opts.APIBase, "/"), c.opts.Owner, c.opts.Repo, c.opts.Path)
}

func (c *Client) rawURL() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s",
		strings.TrimRight(c.opts.RawBase, "/"), c.opts.Owner, c.opts.Repo, c.opts.Branch, c.opts.Path)
}

// contentsPayload is the subset of the contents API GET response we use.
type contentsPayload struct {
	SHA     string `json:"sha"`
	Content string `json:"content"`
}

// WriteResult reports the outcome of a Write for operator display.
type WriteResult struct {
	OK         bool
	StatusCode int
	Body       string
	SHA        string // sha that was attached to the write, "" for a create
}

// Fetch returns the latest schedule table and its version sha.
//
// With a token it reads the contents API; a payload that fails base64 or
// CSV decoding degrades to an empty canonical table paired with the
// fetched sha, so a corrupt blob is repairable by the next write. A
// non-success status is an error: the remote state is unknown and callers
// must not merge against anything older.
//
// Without a token it falls back to the public raw mirror (sha is "").
func (c *Client) Fetch(ctx context.Context) (model.Table, string, error) {
	if !c.CanWrite() {
		t, err := c.fetchMirror(ctx)
		return t, "", err
	}

	payload, err := c.getContents(ctx)
	if err != nil {
		return model.Table{}, "", err
	}

	raw, err := decodeContent(payload.Content)
	if err != nil {
		appLog.Warn("remote payload not decodable, treating as empty", "path", c.opts.Path, "sha", payload.SHA)
		return model.Table{}, payload.SHA, nil
	}

	table, err := model.DecodeCSV(raw)
	if err != nil {
		appLog.Warn("remote CSV not parsable, treating as empty", "path", c.opts.Path, "sha", payload.SHA)
		return model.Table{}, payload.SHA, nil
	}

	appLog.Debug("fetched schedule", "rows", len(table.Rows), "sha", payload.SHA)
	return table, payload.SHA, nil
}

// fetchMirror reads the unauthenticated raw mirror.
func (c *Client) fetchMirror(ctx context.Context) (model.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.rawURL(), nil)
	if err != nil {
		return model.Table{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return model.Table{}, fmt.Errorf("store: mirror fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Table{}, fmt.Errorf("store: mirror read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.Table{}, &RemoteError{Op: "fetch", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	table, err := model.DecodeCSV(body)
	if err != nil {
		appLog.Warn("mirror CSV not parsable, treating as empty", "path", c.opts.Path)
		return model.Table{}, nil
	}
	return table, nil
}

// getContents performs the authenticated contents API GET.
func (c *Client) getContents(ctx context.Context) (contentsPayload, error) {
	url := c.contentsURL() + "?ref=" + c.opts.Branch

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return contentsPayload{}, err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return contentsPayload{}, fmt.Errorf("store: fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return contentsPayload{}, fmt.Errorf("store: fetch read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return contentsPayload{}, &RemoteError{Op: "fetch", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload contentsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return contentsPayload{}, fmt.Errorf("store: fetch decode: %w", err)
	}
	return payload, nil
}

// resolveSHA returns the current content sha, or "" when the blob does not
// exist yet (first write creates it).
func (c *Client) resolveSHA(ctx context.Context) (string, error) {
	payload, err := c.getContents(ctx)
	if err != nil {
		var re *RemoteError
		if errors.As(err, &re) && re.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", err
	}
	return payload.SHA, nil
}

// Write replaces the remote CSV with the given table.
//
// The sha attached to the PUT is re-resolved here, immediately before the
// request; a sha the caller observed earlier is deliberately ignored. A
// rejected write (stale sha, permissions, anything non-2xx) returns the
// raw status and body in both the result and a *RemoteError.
func (c *Client) Write(ctx context.Context, table model.Table, message string) (WriteResult, error) {
	if !c.CanWrite() {
		return WriteResult{}, ErrMissingToken
	}

	csvBytes, err := model.EncodeCSV(table)
	if err != nil {
		return WriteResult{}, fmt.Errorf("store: encode table: %w", err)
	}

	sha, err := c.resolveSHA(ctx)
	if err != nil {
		return WriteResult{}, fmt.Errorf("store: resolve sha before write: %w", err)
	}

	reqBody := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(csvBytes),
		"branch":  c.opts.Branch,
	}
	if sha != "" {
		reqBody["sha"] = sha
	}

	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return WriteResult{}, fmt.Errorf("store: encode write payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentsURL(), bytes.NewReader(encoded))
	if err != nil {
		return WriteResult{}, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	appLog.Info("writing schedule", "rows", len(table.Rows), "sha", sha, "message", message)

	resp, err := c.client.Do(req)
	if err != nil {
		return WriteResult{}, fmt.Errorf("store: write: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return WriteResult{}, fmt.Errorf("store: write read: %w", err)
	}

	result := WriteResult{
		OK:         resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
		SHA:        sha,
	}
	if !result.OK {
		return result, &RemoteError{Op: "write", StatusCode: result.StatusCode, Body: result.Body}
	}

	appLog.Info("schedule written", "status", result.StatusCode)
	return result, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "token "+c.opts.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}

// decodeContent decodes the base64 content field; the API wraps it with
// newlines, which the std decoder rejects unless stripped.
func decodeContent(content string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, content)
	return base64.StdEncoding.DecodeString(clean)
}
