package fcm

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amicofritto/orders-backend/pkg/logger"
)

func newTestClient(t *testing.T, tokenURL, sendURL string) *Client {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "test"})
	return &Client{
		projectID:   "amico-fritto",
		clientEmail: "push@amico-fritto.iam.gserviceaccount.com",
		privateKey:  key,
		httpClient:  &http.Client{Timeout: time.Second},
		tokenURL:    tokenURL,
		sendURL:     sendURL,
		logger:      logg,
		now:         time.Now,
	}
}

func tokenHandler(calls *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Form.Get("grant_type") != "urn:ietf:params:oauth:grant-type:jwt-bearer" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Form.Get("assertion") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"access_token": "access-abc", "expires_in": 3600})
	}
}

func TestSendDeliversPerToken(t *testing.T) {
	var tokenCalls int32
	tokenSrv := httptest.NewServer(tokenHandler(&tokenCalls))
	defer tokenSrv.Close()

	var sent []string
	sendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer access-abc" {
			t.Errorf("unexpected authorization header %q", got)
		}
		var payload struct {
			Message struct {
				Token        string `json:"token"`
				Notification struct {
					Title string `json:"title"`
					Body  string `json:"body"`
				} `json:"notification"`
			} `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		sent = append(sent, payload.Message.Token)
		w.WriteHeader(http.StatusOK)
	}))
	defer sendSrv.Close()

	client := newTestClient(t, tokenSrv.URL, sendSrv.URL)
	results, err := client.Send(context.Background(), []string{"tok-1", "tok-2"}, Message{Title: "Ordine confermato", Body: "AF000042"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results got %d", len(results))
	}
	for _, res := range results {
		if !res.OK {
			t.Fatalf("token %s should have succeeded: %v", res.Token, res.Error)
		}
	}
	if len(sent) != 2 || sent[0] != "tok-1" || sent[1] != "tok-2" {
		t.Fatalf("unexpected delivered tokens %v", sent)
	}
	if tokenCalls != 1 {
		t.Fatalf("expected a single token exchange, got %d", tokenCalls)
	}
}

func TestSendMarksStaleTokensForPruning(t *testing.T) {
	var tokenCalls int32
	tokenSrv := httptest.NewServer(tokenHandler(&tokenCalls))
	defer tokenSrv.Close()

	sendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Message struct {
				Token string `json:"token"`
			} `json:"message"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		switch payload.Message.Token {
		case "tok-missing":
			w.WriteHeader(http.StatusNotFound)
		case "tok-unregistered":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"details":[{"errorCode":"UNREGISTERED"}]}}`))
		case "tok-flaky":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer sendSrv.Close()

	client := newTestClient(t, tokenSrv.URL, sendSrv.URL)
	results, err := client.Send(context.Background(), []string{"tok-ok", "tok-missing", "tok-unregistered", "tok-flaky"}, Message{Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byToken := map[string]SendResult{}
	for _, res := range results {
		byToken[res.Token] = res
	}
	if !byToken["tok-ok"].OK {
		t.Fatalf("healthy token should succeed")
	}
	if !byToken["tok-missing"].Prune {
		t.Fatalf("404 should mark the token for pruning")
	}
	if !byToken["tok-unregistered"].Prune {
		t.Fatalf("UNREGISTERED body should mark the token for pruning")
	}
	if byToken["tok-flaky"].Prune {
		t.Fatalf("transient failure must not prune the token")
	}
	if byToken["tok-flaky"].OK {
		t.Fatalf("transient failure should not report success")
	}
}

func TestAccessTokenCachedUntilExpiry(t *testing.T) {
	var tokenCalls int32
	tokenSrv := httptest.NewServer(tokenHandler(&tokenCalls))
	defer tokenSrv.Close()

	sendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer sendSrv.Close()

	client := newTestClient(t, tokenSrv.URL, sendSrv.URL)
	base := time.Now()
	client.now = func() time.Time { return base }

	if _, err := client.Send(context.Background(), []string{"tok"}, Message{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.Send(context.Background(), []string{"tok"}, Message{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokenCalls != 1 {
		t.Fatalf("cached token should be reused, got %d exchanges", tokenCalls)
	}

	client.now = func() time.Time { return base.Add(time.Hour) }
	if _, err := client.Send(context.Background(), []string{"tok"}, Message{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokenCalls != 2 {
		t.Fatalf("expired token should be refreshed, got %d exchanges", tokenCalls)
	}
}
