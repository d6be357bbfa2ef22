package hibp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/breachwatch/monitor/internal/core/ports"
	"github.com/breachwatch/monitor/internal/utils"
)

// hashPrefixLength is the k-anonymity prefix sent to the provider; the full digest never leaves the process.
const hashPrefixLength = 6

// ClientConfig holds k-anonymity API settings
type ClientConfig struct {
	KAnonAPIRoot  string
	KAnonAPIToken string
	UserAgent     string
	Timeout       time.Duration
}

// Client subscribes verified hashes with the breach provider's range API.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

var _ ports.BreachNotifier = (*Client)(nil)

// NewClient creates a new k-anonymity API client. A nil logger falls back to the logrus standard logger.
func NewClient(config *ClientConfig, logger *logrus.Logger) (*Client, error) {
	if config.KAnonAPIRoot == "" {
		return nil, fmt.Errorf("hibp: api root is required")
	}
	if _, err := url.Parse(config.KAnonAPIRoot); err != nil {
		return nil, fmt.Errorf("hibp: invalid api root: %w", err)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

type subscribeRequest struct {
	HashPrefix string `json:"hashPrefix"`
}

// SubscribeHash registers the k-anonymity prefix of sha1 for breach alerts
func (c *Client) SubscribeHash(ctx context.Context, sha1 string) error {
	prefix := utils.HashPrefix(sha1, hashPrefixLength)
	body, err := json.Marshal(subscribeRequest{HashPrefix: prefix})
	if err != nil {
		return fmt.Errorf("failed to encode subscribe request: %w", err)
	}

	endpoint := strings.TrimRight(c.config.KAnonAPIRoot, "/") + "/range/subscribe?code=" + url.QueryEscape(c.config.KAnonAPIToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build subscribe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{"hash_prefix": prefix}).WithError(err).Error("hibp: subscribe request failed")
		return fmt.Errorf("failed to subscribe hash: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.WithFields(logrus.Fields{
			"hash_prefix": prefix,
			"status_code": resp.StatusCode,
		}).Error("hibp: subscribe rejected")
		return fmt.Errorf("hibp: subscribe returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	c.logger.WithFields(logrus.Fields{"hash_prefix": prefix}).Info("hibp: hash subscribed")
	return nil
}
