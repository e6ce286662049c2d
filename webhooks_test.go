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
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/docflow/config"
	"github.com/blnkfinance/docflow/model"
)

const testWebhookURL = "https://hooks.example.com/docflow"

func webhookTask(t *testing.T, hook Webhook) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(hook)
	require.NoError(t, err)
	return asynq.NewTask("document_webhook", payload)
}

func withWebhookConfig(url string) {
	config.MockConfig(&config.Configuration{
		Notification: config.Notification{Webhook: config.WebhookConfig{
			Url:        url,
			Headers:    map[string]string{"X-Docflow-Signature": "secret"},
			MaxElapsed: 1,
		}},
	})
}

func TestEventForOutcome(t *testing.T) {
	assert.Equal(t, EventDocumentProcessed, eventForOutcome(&model.ProcessingOutcome{Status: model.StatusSuccess}))
	assert.Equal(t, EventDocumentFailed, eventForOutcome(&model.ProcessingOutcome{Status: model.StatusError}))
}

func TestSendWebhook_NoURLIsNoop(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.docflow.SendWebhook(context.Background(), &model.ProcessingOutcome{Status: model.StatusSuccess}))
	assert.Empty(t, env.redis.Keys())
}

func TestSendWebhook_Enqueues(t *testing.T) {
	env := newTestEnv(t)
	env.config.Notification.Webhook.Url = testWebhookURL

	require.NoError(t, env.docflow.SendWebhook(context.Background(), &model.ProcessingOutcome{OutcomeID: "out_1", Status: model.StatusError}))
	assert.NotEmpty(t, env.redis.Keys())
}

func TestProcessWebhook_Delivers(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	withWebhookConfig(testWebhookURL)

	var received Webhook
	httpmock.RegisterResponder(http.MethodPost, testWebhookURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "secret", req.Header.Get("X-Docflow-Signature"))
		if err := json.NewDecoder(req.Body).Decode(&received); err != nil {
			return nil, err
		}
		return httpmock.NewStringResponse(http.StatusOK, `{"ok":true}`), nil
	})

	hook := Webhook{Event: EventDocumentProcessed, Payload: &model.ProcessingOutcome{OutcomeID: "out_1", Status: model.StatusSuccess}}
	require.NoError(t, ProcessWebhook(context.Background(), webhookTask(t, hook)))
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
	assert.Equal(t, EventDocumentProcessed, received.Event)
	assert.Equal(t, "out_1", received.Payload.OutcomeID)
}

func TestProcessWebhook_RetriesServerErrors(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	withWebhookConfig(testWebhookURL)

	calls := 0
	httpmock.RegisterResponder(http.MethodPost, testWebhookURL, func(req *http.Request) (*http.Response, error) {
		calls++
		if calls < 2 {
			return httpmock.NewStringResponse(http.StatusBadGateway, ""), nil
		}
		return httpmock.NewStringResponse(http.StatusNoContent, ""), nil
	})

	hook := Webhook{Event: EventDocumentFailed, Payload: &model.ProcessingOutcome{OutcomeID: "out_1"}}
	require.NoError(t, ProcessWebhook(context.Background(), webhookTask(t, hook)))
	assert.Equal(t, 2, calls)
}

func TestProcessWebhook_ClientErrorIsPermanent(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	withWebhookConfig(testWebhookURL)

	httpmock.RegisterResponder(http.MethodPost, testWebhookURL, httpmock.NewStringResponder(http.StatusUnauthorized, ""))

	hook := Webhook{Event: EventDocumentFailed, Payload: &model.ProcessingOutcome{OutcomeID: "out_1"}}
	err := ProcessWebhook(context.Background(), webhookTask(t, hook))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestProcessWebhook_NoURL(t *testing.T) {
	withWebhookConfig("")
	assert.NoError(t, ProcessWebhook(context.Background(), asynq.NewTask("document_webhook", []byte("{"))))
}
