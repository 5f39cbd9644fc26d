// Package fetch retrieves the assignment list from the table endpoint.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/drexxdk/tanstack-table/internal/assignment"
)

const tablePath = "table/"

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 8 << 20

// Client issues GET <root>table/ and decodes the JSON array it returns.
type Client struct {
	endpoint string
	http     *http.Client
	log      *zap.Logger
}

// New returns a Client for the given API root. A nil httpClient gets a
// client with the given timeout; a nil logger discards output.
func New(root string, httpClient *http.Client, timeout time.Duration, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		endpoint: Endpoint(root),
		http:     httpClient,
		log:      log,
	}
}

// Endpoint joins the API root and the table path.
func Endpoint(root string) string {
	return strings.TrimRight(strings.TrimSpace(root), "/") + "/" + tablePath
}

// Endpoint returns the URL this client requests.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch retrieves the full assignment list. Failures are *Error values with
// one of the Code* codes.
func (c *Client) Fetch(ctx context.Context) ([]assignment.Assignment, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, wrap(ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			return nil, wrap(ErrCanceled, err)
		}
		c.log.Warn("fetch_failed", zap.String("endpoint", c.endpoint), zap.Error(err))
		return nil, wrap(ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		c.log.Warn("fetch_bad_status", zap.String("endpoint", c.endpoint), zap.Int("status", resp.StatusCode))
		fe := wrap(ErrStatus, fmt.Errorf("status %d", resp.StatusCode))
		fe.Status = resp.StatusCode
		return nil, fe
	}

	list, err := decode(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, wrap(ErrCanceled, ctx.Err())
		}
		c.log.Warn("fetch_malformed_body", zap.String("endpoint", c.endpoint), zap.Error(err))
		return nil, wrap(ErrDecode, err)
	}

	for _, item := range list {
		if !item.Period.Ordered() {
			c.log.Warn("assignment_period_reversed",
				zap.String("id", item.ID),
				zap.Time("start", item.Period.Start.Time),
				zap.Time("end", item.Period.End.Time),
			)
		}
	}

	c.log.Info("fetch_completed",
		zap.String("endpoint", c.endpoint),
		zap.Int("rows", len(list)),
		zap.Duration("latency", time.Since(start)),
	)
	return list, nil
}

func decode(r io.Reader) ([]assignment.Assignment, error) {
	var list []assignment.Assignment
	dec := json.NewDecoder(r)
	if err := dec.Decode(&list); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON array")
	}
	if list == nil {
		return nil, errors.New("expected a JSON array")
	}
	for i := range list {
		if list[i].Groups == nil {
			list[i].Groups = []assignment.Link{}
		}
	}
	if err := assignment.Validate(list); err != nil {
		return nil, err
	}
	return list, nil
}
