package sheetstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tflegends/legends/internal/constants"
)

// Sentinel errors surfaced by the store wrappers. Operation boundaries
// report them to the user-facing layer; none of them stop a poll loop.
var (
	// ErrRecordNotFound means a list fetch no longer contains the
	// expected id. Callers treat it as silently stale: the next poll
	// tick may recover the record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrStaleRecord means a patch carried a revision the store has
	// already advanced past. The local view must be refreshed before
	// retrying the mutation.
	ErrStaleRecord = errors.New("record revision is stale")
)

// StatusError reports a non-2xx response from the record store.
type StatusError struct {
	Table  string
	Method string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("store %s %s: status %d", e.Method, e.Table, e.Code)
}

// Client talks to a spreadsheet-style record store: each table is a path
// under the base URL, GET returns every row wrapped in a {"data":[...]}
// envelope, POST inserts a JSON array of rows and PUT merges a JSON
// array of partial rows by id. There is no pagination and no server-side
// filtering; callers fetch the full table and filter locally.
type Client struct {
	baseURL string
	http    *http.Client
	// group collapses concurrent GETs of the same table. A poll tick
	// racing a user-triggered refresh performs a single request.
	group singleflight.Group
}

// NewClient creates a store client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 8 * time.Second},
	}
}

func (c *Client) tableURL(table string) string {
	return c.baseURL + "/" + table
}

// List fetches every row of a table into out (a pointer to a slice).
func (c *Client) List(ctx context.Context, table string, out interface{}) error {
	v, err, _ := c.group.Do(table, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tableURL(table), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("store GET %s: %w", table, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, &StatusError{Table: table, Method: http.MethodGet, Code: resp.StatusCode}
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return err
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(v.([]byte), &envelope); err != nil {
		return fmt.Errorf("store GET %s: decode: %w", table, err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}

// Create inserts rows (a slice of full records). When out is non-nil the
// response body's data array is decoded into it so callers can observe
// server-assigned fields.
func (c *Client) Create(ctx context.Context, table string, rows interface{}, out interface{}) error {
	return c.send(ctx, http.MethodPost, table, rows, out)
}

// Patch merges partial rows by id. Only the submitted fields change;
// concurrent writes to other fields are left untouched.
func (c *Client) Patch(ctx context.Context, table string, rows interface{}) error {
	return c.send(ctx, http.MethodPut, table, rows, nil)
}

func (c *Client) send(ctx context.Context, method, table string, rows interface{}, out interface{}) error {
	body, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.tableURL(table), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("store %s %s: %w", method, table, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusConflict {
		return ErrStaleRecord
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Table: table, Method: method, Code: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("store %s %s: decode: %w", method, table, err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}
