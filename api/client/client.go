// Package client is an HTTP client of the tally API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/harudayoo/phoniphaleia-vs-sub000/api"
	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
)

const (
	// DefaultRetries this enables Request() to handle the situation where the server connection fails
	DefaultRetries = 3
	// DefaultTimeout is the default timeout for the HTTP client. Proof
	// generation can take a while, so it is generous.
	DefaultTimeout = 3 * time.Minute

	retryDelay = 500 * time.Millisecond
)

// Error is a non-200 answer of the API.
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Code    int    `json:"code"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d (http %d): %s", e.Code, e.Status, e.Message)
}

// HTTPclient is the tally API HTTP client.
type HTTPclient struct {
	c       *http.Client
	host    *url.URL
	retries int
}

// New returns a client of the API at host, after checking that it answers
// the ping endpoint.
func New(host string) (*HTTPclient, error) {
	hostURL, err := url.Parse(host)
	if err != nil {
		return nil, err
	}
	c := &HTTPclient{
		c:       &http.Client{Timeout: DefaultTimeout},
		host:    hostURL,
		retries: DefaultRetries,
	}
	log.Debugw("http client created", "host", hostURL.String())
	if err := c.Ping(); err != nil {
		return nil, err
	}
	return c, nil
}

// SetRetries configures the number of retries for the HTTP client.
func (c *HTTPclient) SetRetries(n int) {
	c.retries = n
}

// SetTimeout configures the timeout for the HTTP client.
func (c *HTTPclient) SetTimeout(d time.Duration) {
	c.c.Timeout = d
}

// Request performs a raw request to the endpoint made of the urlPath
// segments and returns the response body and status code. A non-nil body
// is sent as is with the given content type. Connection failures are
// retried; HTTP errors are not.
func (c *HTTPclient) Request(method, contentType string, body []byte, urlPath ...string) ([]byte, int, error) {
	u := *c.host
	u.Path = path.Join(u.Path, path.Join(urlPath...))

	log.Debugw("http client request", "type", method, "url", u.String(), "bytes", len(body))

	var (
		resp *http.Response
		err  error
	)
	for i := 1; i <= c.retries; i++ {
		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}
		req, rerr := http.NewRequest(method, u.String(), reqBody)
		if rerr != nil {
			return nil, 0, fmt.Errorf("failed to create request: %w", rerr)
		}
		if body != nil {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("Accept", "application/json")
		resp, err = c.c.Do(req)
		if err == nil {
			break
		}
		log.Warnw("http request failed", "error", err.Error(), "attempt", i, "retries", c.retries)
		time.Sleep(retryDelay)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("http request ultimately failed after retries: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, resp.StatusCode, nil
}

// call sends in as JSON, when not nil, and decodes the answer into out,
// when not nil.
func (c *HTTPclient) call(method, endpoint string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
	}
	data, status, err := c.Request(method, "application/json", body, endpoint)
	if err != nil {
		return err
	}
	return decode(data, status, out)
}

func decode(data []byte, status int, out any) error {
	if status != http.StatusOK {
		apiErr := &Error{Status: status}
		if err := json.Unmarshal(data, apiErr); err != nil {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func electionPath(endpoint string, id uint64) string {
	return api.EndpointWithParam(endpoint, fmt.Sprint(id))
}
