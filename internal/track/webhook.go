// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package track

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/autopost-go/internal/model"
)

// Delivery configuration constants
const (
	maxAttempts    = 3
	initialBackoff = 10 * time.Second
	maxBackoff     = 5 * time.Minute
	requestTimeout = 30 * time.Second
	maxResponseLen = 10 * 1024
	webhookAgent   = "autopost/1.0"

	// EventPostPublished fires after a post reaches the blog host.
	EventPostPublished = "post.published"
)

// Notifier POSTs post.published events to a single configured endpoint.
// Deliveries run in the background and never block publishing.
type Notifier struct {
	url     string
	secret  string
	db      *sql.DB
	client  *http.Client
	logger  *slog.Logger
	backoff time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNotifier creates a webhook notifier. An empty URL disables it.
func NewNotifier(url, secret string, db *sql.DB, logger *slog.Logger) *Notifier {
	ctx, cancel := context.WithCancel(context.Background())
	return &Notifier{
		url:     url,
		secret:  secret,
		db:      db,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger,
		backoff: initialBackoff,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Enabled reports whether an endpoint is configured.
func (n *Notifier) Enabled() bool { return n.url != "" }

// Close stops retry loops and waits for in-flight deliveries.
func (n *Notifier) Close() {
	n.cancel()
	n.wg.Wait()
}

type publishedPayload struct {
	Event string    `json:"event"`
	Post  postBody  `json:"post"`
	Sent  time.Time `json:"sent_at"`
}

type postBody struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	WordCount   int        `json:"word_count"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// PostPublished queues a notification for the post. It returns
// immediately; delivery happens on a background goroutine.
func (n *Notifier) PostPublished(post model.ScheduledPost) {
	if !n.Enabled() {
		return
	}

	payload, err := json.Marshal(publishedPayload{
		Event: EventPostPublished,
		Post: postBody{
			ID:          post.ID,
			Title:       post.Title,
			URL:         post.URL,
			WordCount:   post.WordCount,
			PublishedAt: post.PublishedAt,
		},
		Sent: time.Now(),
	})
	if err != nil {
		n.logger.Error("webhook payload marshal failed", "error", err)
		return
	}

	deliveryID := uuid.New().String()
	_, err = n.db.Exec(`
		INSERT INTO webhook_deliveries (id, event, url, created_at)
		VALUES (?, ?, ?, ?)`,
		deliveryID, EventPostPublished, n.url, time.Now())
	if err != nil {
		n.logger.Error("webhook delivery record failed", "error", err)
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.deliver(deliveryID, payload)
	}()
}

// deliver retries with exponential backoff until success, a permanent
// failure or shutdown.
func (n *Notifier) deliver(deliveryID string, payload []byte) {
	backoff := n.backoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, body, retry, err := n.attempt(payload, deliveryID)
		n.recordAttempt(deliveryID, attempt, status, body)

		if err == nil {
			n.complete(deliveryID, true)
			n.logger.Info("webhook delivered",
				"delivery_id", deliveryID,
				"status_code", status,
				"attempt", attempt)
			return
		}

		n.logger.Warn("webhook delivery failed",
			"delivery_id", deliveryID,
			"attempt", attempt,
			"error", err)

		if !retry || attempt == maxAttempts {
			break
		}
		select {
		case <-n.ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
	n.complete(deliveryID, false)
}

// attempt performs one HTTP POST. The retry flag distinguishes
// transient failures from permanent ones.
func (n *Notifier) attempt(payload []byte, deliveryID string) (status int, body string, retry bool, err error) {
	ctx, cancel := context.WithTimeout(n.ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return 0, "", false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", webhookAgent)
	req.Header.Set("X-Webhook-Event", EventPostPublished)
	req.Header.Set("X-Webhook-Delivery-ID", deliveryID)
	if n.secret != "" {
		req.Header.Set("X-Webhook-Signature", GenerateSignature(payload, n.secret))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, "", true, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	limited, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseLen))
	body = string(limited)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resp.StatusCode, body, false, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		retry = resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests
		return resp.StatusCode, body, retry, fmt.Errorf("HTTP %d", resp.StatusCode)
	default:
		return resp.StatusCode, body, true, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
}

func (n *Notifier) recordAttempt(deliveryID string, attempt, status int, body string) {
	_, err := n.db.Exec(`
		UPDATE webhook_deliveries
		SET attempts = ?, status_code = ?, response_body = ?
		WHERE id = ?`,
		attempt, status, body, deliveryID)
	if err != nil {
		n.logger.Error("webhook attempt update failed", "error", err, "delivery_id", deliveryID)
	}
}

func (n *Notifier) complete(deliveryID string, success bool) {
	_, err := n.db.Exec(`
		UPDATE webhook_deliveries
		SET success = ?, completed_at = ?
		WHERE id = ?`,
		success, time.Now(), deliveryID)
	if err != nil {
		n.logger.Error("webhook completion update failed", "error", err, "delivery_id", deliveryID)
	}
}

// GenerateSignature computes the hex HMAC-SHA256 of the payload.
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a signature produced by GenerateSignature.
func VerifySignature(payload []byte, signature, secret string) bool {
	expected := GenerateSignature(payload, secret)
	return hmac.Equal([]byte(signature), []byte(expected))
}
