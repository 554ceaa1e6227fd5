package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amicofritto/orders-backend/pkg/config"
	pkgerrors "github.com/amicofritto/orders-backend/pkg/errors"
)

// Result carries the verification outcome and any provider error codes.
type Result struct {
	Success    bool
	ErrorCodes []string
}

// Verifier checks captcha challenge tokens against the provider's
// siteverify endpoint.
type Verifier struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
}

// NewVerifier configures the provider client. An empty secret disables
// verification; Verify then accepts every token.
func NewVerifier(cfg config.CaptchaConfig) *Verifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Verifier{
		secret:     strings.TrimSpace(cfg.Secret),
		verifyURL:  cfg.VerifyURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a provider secret is configured.
func (v *Verifier) Enabled() bool {
	return v != nil && v.secret != ""
}

// Verify checks one challenge token. Provider outages surface as
// dependency errors so callers can decide whether to fail open.
func (v *Verifier) Verify(ctx context.Context, token string) (Result, error) {
	if !v.Enabled() {
		return Result{Success: true}, nil
	}
	if strings.TrimSpace(token) == "" {
		return Result{Success: false, ErrorCodes: []string{"missing-input-response"}}, nil
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "captcha: build verify request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "captcha: verify request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("captcha: provider returned status %d", resp.StatusCode))
	}

	var parsed struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "captcha: decode verify response")
	}
	return Result{Success: parsed.Success, ErrorCodes: parsed.ErrorCodes}, nil
}
