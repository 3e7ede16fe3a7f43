// Package remotesync talks to the Safari REST API on behalf of the wizards and lists.
// Every outcome is normalized into a core.SyncResult; nothing is retried.
package remotesync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/safari/core"
)

const (
	msgAuthRequired   = "Authentication required"
	msgTransportError = "Could not reach the server. Check your connection and try again."
	msgBadResponse    = "The server sent an unexpected response. Please try again."
	msgFieldErrors    = "Please correct the highlighted fields."
)

type Client struct {
	baseURL *url.URL
	http    *rest.Client
	jar     http.CookieJar
	session *sessionStore
	logger  core.Logger
}

var _ core.SyncService = (*Client)(nil) // interface compliance check

type Options struct {
	BaseURL string
	Timeout time.Duration
	// SessionFile keeps the session cookie between runs; empty keeps it in memory only.
	SessionFile string
	Logger      core.Logger
	// Transport overrides the HTTP transport, used in tests.
	Transport http.RoundTripper
}

// NewClient returns a Client for the API rooted at opts.BaseURL (e.g. http://localhost:8000/api).
// A session saved by a previous Login is restored.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing base url")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating cookie jar")
	}
	if opts.Logger == nil {
		opts.Logger = core.NopLogger()
	}

	c := &Client{
		baseURL: base,
		http:    &rest.Client{HTTPClient: &http.Client{Jar: jar, Timeout: opts.Timeout, Transport: opts.Transport}},
		jar:     jar,
		session: &sessionStore{path: opts.SessionFile},
		logger:  opts.Logger,
	}
	cookies, err := c.session.load()
	if err != nil {
		c.logger.Warn(fmt.Sprintf("remotesync: restoring session: %v", err), err)
	} else if len(cookies) > 0 {
		jar.SetCookies(base, cookies)
	}
	return c, nil
}

// NewClientFromConfig returns a Client for the console settings of conf.
func NewClientFromConfig(conf *core.Config, logger core.Logger) (*Client, error) {
	return NewClient(Options{
		BaseURL:     conf.Console.APIBaseURL,
		Timeout:     conf.Console.Timeout,
		SessionFile: conf.Console.SessionFile,
		Logger:      logger,
	})
}

func (c *Client) Save(ctx context.Context, collection, id string, payload interface{}) core.SyncResult {
	if id == "" {
		return c.send(ctx, rest.Post, collectionPath(collection), nil, payload)
	}
	return c.send(ctx, rest.Put, collectionPath(collection, id), nil, payload)
}

func (c *Client) Get(ctx context.Context, collection, id string) core.SyncResult {
	return c.send(ctx, rest.Get, collectionPath(collection, id), nil, nil)
}

func (c *Client) Delete(ctx context.Context, collection, id string) core.SyncResult {
	return c.send(ctx, rest.Delete, collectionPath(collection, id), nil, nil)
}

func (c *Client) List(ctx context.Context, collection string, params map[string]string) core.SyncResult {
	return c.send(ctx, rest.Get, collectionPath(collection), params, nil)
}

// Login opens a session; the API answers with a session cookie that the client keeps and persists.
func (c *Client) Login(ctx context.Context, username, password string) core.SyncResult {
	res := c.send(ctx, rest.Post, "/users/login", nil, map[string]string{
		"username": username,
		"password": password,
	})
	if res.OK {
		if err := c.session.save(c.jar.Cookies(c.baseURL)); err != nil {
			c.logger.Warn(fmt.Sprintf("remotesync: saving session: %v", err), err)
		}
	}
	return res
}

// Logout closes the session on both ends. The local session is dropped even when the API is unreachable.
func (c *Client) Logout(ctx context.Context) core.SyncResult {
	res := c.send(ctx, rest.Post, "/users/logout", nil, nil)
	c.jar.SetCookies(c.baseURL, expired(c.jar.Cookies(c.baseURL)))
	if err := c.session.clear(); err != nil {
		c.logger.Warn(fmt.Sprintf("remotesync: clearing session: %v", err), err)
	}
	return res
}

// HasSession reports whether a session cookie is held.
func (c *Client) HasSession() bool {
	return len(c.jar.Cookies(c.baseURL)) > 0
}

func (c *Client) send(ctx context.Context, method rest.Method, path string, params map[string]string, payload interface{}) core.SyncResult {
	req := rest.Request{
		Method:  method,
		BaseURL: c.baseURL.String() + path,
		Headers: map[string]string{
			"Accept": "application/json",
		},
		QueryParams: params,
	}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			c.logger.Error(fmt.Sprintf("remotesync: encoding %s payload: %v", path, err), err)
			return core.SyncResult{Kind: core.TransportError, Message: msgBadResponse}
		}
		req.Headers["Content-Type"] = "application/json"
		req.Body = body
	}

	resp, err := c.http.SendWithContext(ctx, req)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("remotesync: %s %s: %v", method, path, err), err)
		return core.SyncResult{Kind: core.TransportError, Message: msgTransportError}
	}
	return toResult(resp.StatusCode, []byte(resp.Body))
}

// toResult maps an HTTP response onto a SyncResult.
func toResult(status int, body []byte) core.SyncResult {
	trimmed := strings.TrimSpace(string(body))

	if status >= 200 && status < 300 {
		if trimmed == "" {
			return core.SyncResult{OK: true, Status: status}
		}
		if !json.Valid(body) {
			return core.SyncResult{Kind: core.TransportError, Message: msgBadResponse, Status: status}
		}
		return core.SyncResult{OK: true, Entity: json.RawMessage(body), Status: status}
	}

	var payload map[string]interface{}
	if trimmed == "" || json.Unmarshal(body, &payload) != nil {
		if status == http.StatusUnauthorized {
			return core.SyncResult{Kind: core.AuthRequired, Message: msgAuthRequired, Status: status}
		}
		return core.SyncResult{Kind: core.TransportError, Message: msgBadResponse, Status: status}
	}

	res := core.SyncResult{Kind: core.ServerRejection, Status: status}
	if msg, ok := payload["error"].(string); ok {
		res.Message = msg
	} else {
		fields := make(map[string]string, len(payload))
		for k, v := range payload {
			if s, ok := v.(string); ok {
				fields[k] = s
			}
		}
		if len(fields) > 0 {
			res.Fields = fields
			res.Message = msgFieldErrors
		}
	}
	if res.Message == "" {
		res.Message = fmt.Sprintf("The server rejected the request (%d %s).", status, http.StatusText(status))
	}
	if status == http.StatusUnauthorized || strings.EqualFold(res.Message, msgAuthRequired) {
		res.Kind = core.AuthRequired
	}
	return res
}

func collectionPath(collection string, id ...string) string {
	path := "/" + strings.Trim(collection, "/")
	if len(id) > 0 && id[0] != "" {
		path += "/" + url.PathEscape(id[0])
	}
	return path
}

func expired(cookies []*http.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		out = append(out, &http.Cookie{Name: ck.Name, Value: "", Path: "/", MaxAge: -1})
	}
	return out
}
