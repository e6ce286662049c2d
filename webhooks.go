/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package docflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/docflow/config"
	"github.com/blnkfinance/docflow/model"
)

const (
	EventDocumentProcessed = "document.processed"
	EventDocumentFailed    = "document.failed"
)

// Webhook is the body posted to the configured webhook url.
type Webhook struct {
	Event   string                   `json:"event"`
	Payload *model.ProcessingOutcome `json:"data"`
}

func eventForOutcome(outcome *model.ProcessingOutcome) string {
	if outcome.Status == model.StatusSuccess {
		return EventDocumentProcessed
	}
	return EventDocumentFailed
}

// SendWebhook queues a webhook for a finished outcome. It is a no-op when no
// webhook url is configured.
func (d *Docflow) SendWebhook(ctx context.Context, outcome *model.ProcessingOutcome) error {
	if d.config.Notification.Webhook.Url == "" || d.queue == nil {
		return nil
	}
	return d.queue.EnqueueWebhook(ctx, Webhook{Event: eventForOutcome(outcome), Payload: outcome})
}

// ProcessWebhook delivers a queued webhook, retrying transient failures.
func ProcessWebhook(ctx context.Context, task *asynq.Task) error {
	conf, err := config.Fetch()
	if err != nil {
		return err
	}
	if conf.Notification.Webhook.Url == "" {
		return nil
	}

	var hook Webhook
	if err := json.Unmarshal(task.Payload(), &hook); err != nil {
		logrus.WithError(err).Error("invalid webhook payload")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	logrus.WithField("event", hook.Event).Info("delivering webhook")
	return deliverWebhook(ctx, conf.Notification.Webhook, hook)
}

func deliverWebhook(ctx context.Context, cfg config.WebhookConfig, hook Webhook) error {
	body, err := json.Marshal(hook)
	if err != nil {
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = time.Duration(cfg.MaxElapsed) * time.Second

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		for key, value := range cfg.Headers {
			req.Header.Set(key, value)
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer func(Body io.ReadCloser) {
			if err := Body.Close(); err != nil {
				logrus.Error(err)
			}
		}(resp.Body)

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return backoff.Permanent(fmt.Errorf("webhook rejected with status %d", resp.StatusCode))
		default:
			return fmt.Errorf("webhook failed with status %d", resp.StatusCode)
		}
	}

	notify := func(err error, wait time.Duration) {
		logrus.WithError(err).WithField("retry_in", wait).Warn("webhook delivery failed")
	}
	return backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify)
}
