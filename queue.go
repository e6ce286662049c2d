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
	"fmt"
	"hash/fnv"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/docflow/config"
	redis_db "github.com/blnkfinance/docflow/internal/redis-db"
)

// Queue hands documents and webhook deliveries to the asynq workers.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
	conf      *config.Configuration
}

// DocumentTask is the payload of a queued document. The outcome row already
// exists in PENDING when the task is enqueued.
type DocumentTask struct {
	OutcomeID   string `json:"outcome_id"`
	TenantID    string `json:"tenant_id"`
	InterfaceID string `json:"interface_id"`
	FileName    string `json:"file_name"`
	Content     []byte `json:"content"`
}

func NewQueue(conf *config.Configuration) (*Queue, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
	if err != nil {
		return nil, err
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB, TLSConfig: redisOption.TLSConfig}
	return &Queue{
		Client:    asynq.NewClient(queueOptions),
		Inspector: asynq.NewInspector(queueOptions),
		conf:      conf,
	}, nil
}

// ProcessQueues lists every document queue name workers must listen on.
func ProcessQueues(conf *config.Configuration) []string {
	names := make([]string, conf.Queue.NumberOfQueues)
	for i := range names {
		names[i] = fmt.Sprintf("%s_%d", conf.Queue.ProcessQueue, i+1)
	}
	return names
}

// processQueueFor spreads tenants over the document queues. All documents of a
// tenant land on the same queue.
func (q *Queue) processQueueFor(tenantID string) string {
	index := hashTenantID(tenantID) % q.conf.Queue.NumberOfQueues
	return fmt.Sprintf("%s_%d", q.conf.Queue.ProcessQueue, index+1)
}

func hashTenantID(tenantID string) int {
	hasher := fnv.New32a()
	_, _ = hasher.Write([]byte(tenantID))
	return int(hasher.Sum32())
}

// EnqueueDocument queues task under its outcome id, so a document is queued at most once.
func (q *Queue) EnqueueDocument(ctx context.Context, task DocumentTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	queueName := q.processQueueFor(task.TenantID)
	t := asynq.NewTask(queueName, payload, asynq.TaskID(task.OutcomeID), asynq.Queue(queueName), asynq.MaxRetry(q.conf.Queue.MaxRetry))
	info, err := q.Client.EnqueueContext(ctx, t)
	if err != nil {
		logrus.WithError(err).WithField("outcome_id", task.OutcomeID).Error("failed to enqueue document")
		return err
	}
	logrus.WithFields(logrus.Fields{"outcome_id": task.OutcomeID, "queue": info.Queue}).Info("document enqueued")
	return nil
}

// EnqueueWebhook queues a webhook delivery.
func (q *Queue) EnqueueWebhook(ctx context.Context, hook Webhook) error {
	payload, err := json.Marshal(hook)
	if err != nil {
		return err
	}

	queueName := q.conf.Queue.WebhookQueue
	t := asynq.NewTask(queueName, payload, asynq.Queue(queueName), asynq.MaxRetry(q.conf.Queue.MaxRetry))
	if _, err := q.Client.EnqueueContext(ctx, t); err != nil {
		logrus.WithError(err).WithField("event", hook.Event).Error("failed to enqueue webhook")
		return err
	}
	return nil
}

// GetQueuedDocument looks a pending document task up by outcome id across all document queues.
func (q *Queue) GetQueuedDocument(outcomeID string) (*DocumentTask, error) {
	for _, queueName := range ProcessQueues(q.conf) {
		info, err := q.Inspector.GetTaskInfo(queueName, outcomeID)
		if err != nil || info == nil {
			continue
		}
		var task DocumentTask
		if err := json.Unmarshal(info.Payload, &task); err != nil {
			return nil, err
		}
		return &task, nil
	}
	return nil, nil
}

func (q *Queue) Close() error {
	if err := q.Inspector.Close(); err != nil {
		return err
	}
	return q.Client.Close()
}
