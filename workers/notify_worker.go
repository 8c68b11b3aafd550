// workers/notify_worker.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"earn-quest-service/services"
)

// NotifyWorker drains unnotified quest events and forwards them to the
// notification service. Events stay unnotified on failure and are retried
// next tick.
type NotifyWorker struct {
	events       *services.EventService
	interval     time.Duration
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

func NewNotifyWorker(events *services.EventService) *NotifyWorker {
	baseURL := os.Getenv("NOTIFY_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("NOTIFY_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("QUEST_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("QUEST_SERVICE_TOKEN environment variable is required for notifications")
	}

	return &NotifyWorker{
		events:       events,
		interval:     30 * time.Second,
		baseURL:      baseURL,
		serviceToken: token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *NotifyWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Notify Worker (quest_events → notification service)…")
	go w.run(ctx)
}

func (w *NotifyWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.drainBatch(ctx); err != nil {
				log.Printf("❌ Notify batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Notify Worker stopped")
			return
		}
	}
}

func (w *NotifyWorker) drainBatch(ctx context.Context) error {
	events, err := w.events.ListUnnotified(100)
	if err != nil {
		return fmt.Errorf("failed to load unnotified events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid notify service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath("/api/v1/notifications/quest-events").String()

	payload, err := json.Marshal(map[string]interface{}{"events": events})
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpointURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", endpointURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to notify service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notify service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	if err := w.events.MarkNotified(ids, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark %d event(s) notified: %w", len(ids), err)
	}

	log.Printf("📤 Forwarded %d quest event(s) to notification service", len(ids))
	return nil
}
