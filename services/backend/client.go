package backendsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core"
)

// TokenSource yields the bearer token of the active session.
type TokenSource interface {
	Token() string
}

type Options struct {
	BaseURL     string
	Timeout     time.Duration
	LongTimeout time.Duration
	Verbs       VerbStrategy
	HTTPClient  *http.Client
	Tokens      TokenSource
	// OnUnauthorized runs whenever an authenticated request is answered with 401.
	OnUnauthorized func()
	Logger         core.Logger
}

// Client is the HTTP wrapper every resource service goes through.
type Client struct {
	opts Options
}

var _ core.Backend = (*Client)(nil)

func NewClient(opts Options) *Client {
	if opts.Verbs == nil {
		opts.Verbs = DirectVerbs{}
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Client{opts: opts}
}

func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}, opts ...core.RequestOption) error {
	ro := core.ApplyRequestOptions(opts)
	op := method + " " + path

	timeout := c.opts.Timeout
	if ro.Long && c.opts.LongTimeout > 0 {
		timeout = c.opts.LongTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, reqID, err := c.newRequest(ctx, method, path, body, ro)
	if err != nil {
		return errors.Wrap(err, op)
	}
	c.debug(fmt.Sprintf("%s [%s]", op, reqID))

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return c.transportError(ctx, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		c.warn(fmt.Sprintf("%s [%s]: %d", op, reqID, resp.StatusCode), apiErr)
		if resp.StatusCode == http.StatusUnauthorized && !ro.Anonymous && c.opts.OnUnauthorized != nil {
			c.opts.OnUnauthorized()
		}
		return errors.Wrap(apiErr, op)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(ioutil.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		if ctx.Err() != nil {
			return c.transportError(ctx, op, err)
		}
		return errors.Wrapf(err, "%s: decoding response", op)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}, ro core.RequestOptions) (*http.Request, string, error) {
	wireMethod, header, wireBody, err := c.opts.Verbs.Prepare(method, body)
	if err != nil {
		return nil, "", err
	}

	var rdr io.Reader
	if wireBody != nil {
		raw, err := json.Marshal(wireBody)
		if err != nil {
			return nil, "", errors.Wrap(err, "encoding request body")
		}
		rdr = bytes.NewReader(raw)
	}

	url := c.opts.BaseURL + "/" + strings.TrimLeft(path, "/")
	if len(ro.Query) > 0 {
		url += "?" + ro.Query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, wireMethod, url, rdr)
	if err != nil {
		return nil, "", errors.Wrap(err, "building request")
	}

	reqID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	if !ro.Anonymous && c.opts.Tokens != nil {
		if token := c.opts.Tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, reqID, nil
}

// transportError classifies a failure that produced no response.
// A caller cancellation (page unmounted) is returned as is.
func (c *Client) transportError(ctx context.Context, op string, err error) error {
	if ctx.Err() == context.Canceled {
		return errors.Wrap(context.Canceled, op)
	}
	timeout := ctx.Err() == context.DeadlineExceeded
	if ne, ok := errors.Cause(err).(net.Error); ok && ne.Timeout() {
		timeout = true
	}
	nerr := &core.NetworkError{Op: op, Timeout: timeout, Err: err}
	c.error(nerr.Error(), err)
	return nerr
}

func decodeAPIError(resp *http.Response) *core.APIError {
	apiErr := &core.APIError{Status: resp.StatusCode}

	var data struct {
		Message string                     `json:"message"`
		Error   json.RawMessage            `json:"error"`
		Errors  map[string]json.RawMessage `json:"errors"`
	}
	raw, err := ioutil.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || json.Unmarshal(raw, &data) != nil {
		return apiErr
	}

	apiErr.Message = data.Message
	if apiErr.Message == "" && len(data.Error) > 0 {
		var msg string
		if json.Unmarshal(data.Error, &msg) == nil {
			apiErr.Message = msg
		} else {
			// field map, as sent for validation failures
			var flds map[string]string
			if json.Unmarshal(data.Error, &flds) == nil {
				apiErr.Fields = flds
			}
		}
	}
	if len(data.Errors) > 0 {
		apiErr.Fields = make(map[string]string, len(data.Errors))
		for fld, msg := range data.Errors {
			var msgs []string
			var one string
			switch {
			case json.Unmarshal(msg, &msgs) == nil && len(msgs) > 0:
				apiErr.Fields[fld] = msgs[0]
			case json.Unmarshal(msg, &one) == nil:
				apiErr.Fields[fld] = one
			}
		}
	}
	return apiErr
}

func (c *Client) debug(msg string, args ...interface{}) {
	if c.opts.Logger != nil {
		c.opts.Logger.Debug(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...interface{}) {
	if c.opts.Logger != nil {
		c.opts.Logger.Warn(msg, args...)
	}
}

func (c *Client) error(msg string, args ...interface{}) {
	if c.opts.Logger != nil {
		c.opts.Logger.Error(msg, args...)
	}
}
