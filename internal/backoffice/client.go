// Package backoffice drives the session-based back-office system that owns the
// shop roster and performs its own daily closing. Login and logout emulate the
// system's HTML form flow; the two data endpoints are plain URL+query calls.
package backoffice

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Connector is the narrow surface consumed by job logic, keeping the form
// emulation mechanics replaceable.
type Connector interface {
	Authenticate(ctx context.Context) error
	FetchRoster(ctx context.Context, date time.Time) ([]RosterShop, error)
	TriggerClosing(ctx context.Context, shopCode string, date time.Time) error
	SignOut(ctx context.Context) error
}

// RosterShop is one row of the back-office shop roster.
type RosterShop struct {
	Code    string
	Name    string
	Kana    string
	Address string
	Phone   string
}

// Config carries connection settings for the back-office system.
type Config struct {
	BaseURL     string
	User        string
	Password    string
	Timeout     time.Duration
	SettleDelay time.Duration
}

// Client implements Connector against the live system.
type Client struct {
	cfg        Config
	httpClient *http.Client
	sleep      func(time.Duration)
}

// NewClient constructs a new client with its own cookie jar.
func NewClient(cfg Config) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("backoffice: cookie jar: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = 2 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: cfg.Timeout,
		},
		sleep: time.Sleep,
	}, nil
}

// Authenticate submits the login form and waits the fixed settle delay the
// system needs before it accepts data requests on the session.
func (c *Client) Authenticate(ctx context.Context) error {
	form := url.Values{}
	form.Set("loginId", c.cfg.User)
	form.Set("password", c.cfg.Password)

	resp, err := c.postForm(ctx, "/login", form)
	if err != nil {
		return fmt.Errorf("backoffice: login: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("backoffice: login returned status %d", resp.StatusCode)
	}

	c.sleep(c.cfg.SettleDelay)
	return nil
}

// FetchRoster retrieves the full shop roster for the given date.
func (c *Client) FetchRoster(ctx context.Context, date time.Time) ([]RosterShop, error) {
	endpoint := fmt.Sprintf("%s/shops/list?date=%s", c.cfg.BaseURL, date.Format("20060102"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backoffice: fetch roster: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("backoffice: roster returned status %d", resp.StatusCode)
	}
	return ParseRoster(resp.Body)
}

// TriggerClosing asks the back-office system to perform its own closing for
// the shop and date. The response body is irrelevant; only the status matters.
func (c *Client) TriggerClosing(ctx context.Context, shopCode string, date time.Time) error {
	endpoint := fmt.Sprintf("%s/closing/run?shop=%s&date=%s", c.cfg.BaseURL, url.QueryEscape(shopCode), date.Format("20060102"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backoffice: trigger closing: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("backoffice: closing returned status %d", resp.StatusCode)
	}
	return nil
}

// SignOut terminates the session. Safe to call after a failed login.
func (c *Client) SignOut(ctx context.Context) error {
	resp, err := c.postForm(ctx, "/logout", url.Values{})
	if err != nil {
		return fmt.Errorf("backoffice: logout: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("backoffice: logout returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.httpClient.Do(req)
}
