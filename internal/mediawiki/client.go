// Package mediawiki is a small client for the MediaWiki action API: log in,
// read page wikitext and edit pages.
package mediawiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/AndreyAkinshin/dejadiff/internal/logging"
)

const userAgent = "dejadiff (+https://github.com/AndreyAkinshin/dejadiff)"

// DefaultRetryMax is the number of retries for failed requests.
const DefaultRetryMax = 3

// APIError is an error reported by the wiki in the response body.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mediawiki: %s: %s", e.Code, e.Info)
}

// Client talks to one wiki. Sessions are kept in a cookie jar, so Login
// applies to every later request.
type Client struct {
	endpoint string
	http     *retryablehttp.Client
	logger   *slog.Logger
	csrf     string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request and retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.OrDiscard(logger)
	}
}

// WithRetryMax sets how often a request is retried on connection errors
// and 5xx responses.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		c.http.RetryMax = n
	}
}

// New creates a client for the wiki at rawURL. rawURL is either the
// api.php endpoint or the script path containing it, e.g.
// "https://wiki.example.org/w".
func New(rawURL string, opts ...Option) (*Client, error) {
	endpoint, err := Endpoint(rawURL)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	hc := retryablehttp.NewClient()
	hc.HTTPClient.Jar = jar
	hc.RetryMax = DefaultRetryMax

	c := &Client{endpoint: endpoint, http: hc, logger: logging.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	hc.Logger = c.logger
	return c, nil
}

// Endpoint returns the api.php URL for a wiki URL.
func Endpoint(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid wiki url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid wiki url %q: scheme must be http or https", rawURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid wiki url %q: missing host", rawURL)
	}
	if !strings.HasSuffix(u.Path, "/api.php") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/api.php"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// Login starts a session with a bot password or account credentials.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var tokens tokensResponse
	if err := c.get(ctx, url.Values{"action": {"query"}, "meta": {"tokens"}, "type": {"login"}}, &tokens); err != nil {
		return fmt.Errorf("fetch login token: %w", err)
	}

	var res struct {
		Login struct {
			Result string `json:"result"`
			Reason string `json:"reason"`
		} `json:"login"`
	}
	err := c.post(ctx, url.Values{
		"action":     {"login"},
		"lgname":     {username},
		"lgpassword": {password},
		"lgtoken":    {tokens.Query.Tokens.LoginToken},
	}, &res)
	if err != nil {
		return err
	}
	if res.Login.Result != "Success" {
		return &APIError{Code: "login-" + strings.ToLower(res.Login.Result), Info: res.Login.Reason}
	}
	c.csrf = ""
	c.logger.Debug("logged in", "user", username)
	return nil
}

// Page returns the current wikitext of title. exists is false for a page
// that has never been created.
func (c *Client) Page(ctx context.Context, title string) (content string, exists bool, err error) {
	var res struct {
		Query struct {
			Pages []struct {
				Title         string `json:"title"`
				Missing       bool   `json:"missing"`
				Invalid       bool   `json:"invalid"`
				InvalidReason string `json:"invalidreason"`
				Revisions     []struct {
					Slots struct {
						Main struct {
							Content string `json:"content"`
						} `json:"main"`
					} `json:"slots"`
				} `json:"revisions"`
			} `json:"pages"`
		} `json:"query"`
	}
	err = c.get(ctx, url.Values{
		"action":  {"query"},
		"prop":    {"revisions"},
		"rvprop":  {"content"},
		"rvslots": {"main"},
		"titles":  {title},
	}, &res)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", title, err)
	}
	if len(res.Query.Pages) == 0 {
		return "", false, nil
	}
	p := res.Query.Pages[0]
	if p.Invalid {
		return "", false, &APIError{Code: "invalidtitle", Info: p.InvalidReason}
	}
	if p.Missing || len(p.Revisions) == 0 {
		return "", false, nil
	}
	return p.Revisions[0].Slots.Main.Content, true, nil
}

// Edit replaces the text of title, creating the page if needed.
func (c *Client) Edit(ctx context.Context, title, text, summary string) error {
	token, err := c.csrfToken(ctx)
	if err != nil {
		return err
	}

	var res struct {
		Edit struct {
			Result string `json:"result"`
		} `json:"edit"`
	}
	err = c.post(ctx, url.Values{
		"action":  {"edit"},
		"title":   {title},
		"text":    {text},
		"summary": {summary},
		"token":   {token},
	}, &res)
	if err != nil {
		return fmt.Errorf("edit %s: %w", title, err)
	}
	if res.Edit.Result != "Success" {
		return fmt.Errorf("edit %s: result %q", title, res.Edit.Result)
	}
	c.logger.Debug("edited page", "title", title)
	return nil
}

type tokensResponse struct {
	Query struct {
		Tokens struct {
			LoginToken string `json:"logintoken"`
			CSRFToken  string `json:"csrftoken"`
		} `json:"tokens"`
	} `json:"query"`
}

func (c *Client) csrfToken(ctx context.Context) (string, error) {
	if c.csrf != "" {
		return c.csrf, nil
	}
	var tokens tokensResponse
	if err := c.get(ctx, url.Values{"action": {"query"}, "meta": {"tokens"}}, &tokens); err != nil {
		return "", fmt.Errorf("fetch edit token: %w", err)
	}
	c.csrf = tokens.Query.Tokens.CSRFToken
	return c.csrf, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+withFormat(params).Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, params url.Values, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, []byte(withFormat(params).Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) do(req *retryablehttp.Request, out any) error {
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: unexpected status %s", req.Method, c.endpoint, resp.Status)
	}

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func withFormat(params url.Values) url.Values {
	params.Set("format", "json")
	params.Set("formatversion", "2")
	return params
}
