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
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/docflow/internal/tenant"
	"github.com/blnkfinance/docflow/model"
)

// BatchResult pairs a submission's outcome with the error that stopped it, if any.
type BatchResult struct {
	FileName string                   `json:"file_name"`
	Outcome  *model.ProcessingOutcome `json:"outcome,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

type batchJob struct {
	index int
	sub   Submission
}

// ProcessBatch processes submissions on at most MaxWorkers workers. Results come
// back in input order. Each worker owns one tenant holder and scopes every
// submission it takes, so one batch may mix tenants.
func (d *Docflow) ProcessBatch(ctx context.Context, subs []Submission) []BatchResult {
	results := make([]BatchResult, len(subs))
	if len(subs) == 0 {
		return results
	}

	maxWorkers := d.config.Processing.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if maxWorkers > len(subs) {
		maxWorkers = len(subs)
	}
	logrus.Infof("Processing batch of %d documents with %d workers", len(subs), maxWorkers)

	jobs := make(chan batchJob)
	var batchWg sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		batchWg.Add(1)
		go func() {
			defer batchWg.Done()
			holder := &tenant.Holder{}
			for job := range jobs {
				results[job.index] = d.processBatchItem(ctx, holder, job.sub)
			}
		}()
	}

	for i, sub := range subs {
		jobs <- batchJob{index: i, sub: sub}
	}
	close(jobs)

	batchWg.Wait()
	return results
}

// processBatchItem runs one submission inside the worker's tenant scope. The
// holder is empty again before the worker takes its next submission.
func (d *Docflow) processBatchItem(ctx context.Context, holder *tenant.Holder, sub Submission) BatchResult {
	result := BatchResult{FileName: sub.FileName}
	err := holder.Scope(sub.TenantID, func() error {
		tenantID, _ := holder.Get()
		outcome, err := d.ProcessDocument(tenant.WithTenant(ctx, tenantID), sub)
		if err != nil {
			return err
		}
		result.Outcome = outcome
		return nil
	})
	if err != nil {
		logrus.Errorf("failed to process %s for tenant %s: %v", sub.FileName, sub.TenantID, err)
		result.Error = err.Error()
	}
	return result
}
