// Package ftpx wraps delivery of report files to the configured FTP endpoint.
package ftpx

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jlaffaye/ftp"
)

// Config carries FTP connection settings.
type Config struct {
	Addr     string
	User     string
	Password string
	Dir      string
	Timeout  time.Duration
}

// Client uploads files to a single configured FTP server.
type Client struct {
	cfg Config
}

// NewClient constructs a new client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{cfg: cfg}
}

// Store connects, authenticates and uploads data under the given filename.
// Each call uses a fresh connection; the server session is quit on return.
func (c *Client) Store(ctx context.Context, filename string, data []byte) error {
	conn, err := ftp.Dial(c.cfg.Addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(c.cfg.Timeout))
	if err != nil {
		return fmt.Errorf("ftpx: dial %s: %w", c.cfg.Addr, err)
	}
	defer func() {
		_ = conn.Quit()
	}()

	if err := conn.Login(c.cfg.User, c.cfg.Password); err != nil {
		return fmt.Errorf("ftpx: login: %w", err)
	}
	if c.cfg.Dir != "" {
		if err := conn.ChangeDir(c.cfg.Dir); err != nil {
			return fmt.Errorf("ftpx: chdir %s: %w", c.cfg.Dir, err)
		}
	}
	if err := conn.Stor(filename, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("ftpx: store %s: %w", filename, err)
	}
	return nil
}
