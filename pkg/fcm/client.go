package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/amicofritto/orders-backend/pkg/config"
	pkgerrors "github.com/amicofritto/orders-backend/pkg/errors"
	"github.com/amicofritto/orders-backend/pkg/logger"
)

var (
	errLoggerRequired      = errors.New("fcm: logger is required")
	errProjectIDRequired   = errors.New("fcm: project id is required")
	errClientEmailRequired = errors.New("fcm: client email is required")
)

const (
	defaultTokenURL    = "https://oauth2.googleapis.com/token"
	defaultSendURLBase = "https://fcm.googleapis.com/v1"
	messagingScope     = "https://www.googleapis.com/auth/firebase.messaging"
	assertionLifetime  = time.Hour
	tokenRefreshSkew   = 2 * time.Minute
)

// Message is the notification payload delivered to a single device.
// ClickAction is the web link opened when the notification is tapped.
type Message struct {
	Title       string
	Body        string
	ClickAction string
	Data        map[string]string
}

// SendResult reports the outcome for one device token. Prune marks tokens
// the backend no longer recognizes; callers should drop them.
type SendResult struct {
	Token  string
	OK     bool
	Status int
	Prune  bool
	Error  error
}

// Client sends push notifications over the FCM HTTP v1 API using a service
// account credential. Access tokens are minted lazily and cached until
// shortly before expiry.
type Client struct {
	projectID   string
	clientEmail string
	privateKey  any
	httpClient  *http.Client
	tokenURL    string
	sendURL     string
	logger      *logger.Logger
	now         func() time.Time

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient parses the service account key and wires the HTTP transport.
func NewClient(cfg config.FirebaseConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	clientEmail := strings.TrimSpace(cfg.ClientEmail)
	if clientEmail == "" {
		return nil, errClientEmailRequired
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.NormalizedPrivateKey()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fcm: parse service account key")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		projectID:   projectID,
		clientEmail: clientEmail,
		privateKey:  key,
		httpClient:  &http.Client{Timeout: timeout},
		tokenURL:    defaultTokenURL,
		sendURL:     fmt.Sprintf("%s/projects/%s/messages:send", defaultSendURLBase, projectID),
		logger:      logg,
		now:         time.Now,
	}, nil
}

// Send delivers the message to every token and reports per-token outcomes.
// A failed delivery never aborts the batch.
func (c *Client) Send(ctx context.Context, tokens []string, msg Message) ([]SendResult, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	accessToken, err := c.accessTokenFor(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SendResult, 0, len(tokens))
	for _, token := range tokens {
		results = append(results, c.sendOne(ctx, accessToken, token, msg))
	}
	return results, nil
}

func (c *Client) sendOne(ctx context.Context, accessToken, token string, msg Message) SendResult {
	message := map[string]any{
		"token": token,
		"notification": map[string]string{
			"title": msg.Title,
			"body":  msg.Body,
		},
	}
	if len(msg.Data) > 0 {
		message["data"] = msg.Data
	}
	if msg.ClickAction != "" {
		message["webpush"] = map[string]any{
			"fcm_options": map[string]string{"link": msg.ClickAction},
		}
	}
	payload := map[string]any{"message": message}

	body, err := json.Marshal(payload)
	if err != nil {
		return SendResult{Token: token, Error: pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fcm: encode message")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, bytes.NewReader(body))
	if err != nil {
		return SendResult{Token: token, Error: pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fcm: build request")}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SendResult{Token: token, Error: pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fcm: send message")}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return SendResult{Token: token, OK: true, Status: resp.StatusCode}
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	prune := resp.StatusCode == http.StatusNotFound || strings.Contains(string(raw), "UNREGISTERED")
	return SendResult{
		Token:  token,
		Status: resp.StatusCode,
		Prune:  prune,
		Error:  pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("fcm: send failed with status %d", resp.StatusCode)),
	}
}

func (c *Client) accessTokenFor(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.accessToken != "" && now.Before(c.tokenExpiry.Add(-tokenRefreshSkew)) {
		return c.accessToken, nil
	}

	assertion, err := c.signAssertion(now)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fcm: build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fcm: exchange token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn(ctx, fmt.Sprintf("fcm token exchange failed: status %d body %s", resp.StatusCode, string(raw)))
		return "", pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("fcm: token exchange returned status %d", resp.StatusCode))
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fcm: decode token response")
	}
	if parsed.AccessToken == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "fcm: token response missing access_token")
	}

	c.accessToken = parsed.AccessToken
	c.tokenExpiry = now.Add(time.Duration(parsed.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *Client) signAssertion(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   c.clientEmail,
		"scope": messagingScope,
		"aud":   defaultTokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(c.privateKey)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fcm: sign assertion")
	}
	return signed, nil
}
