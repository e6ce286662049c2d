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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/wacul/ptr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/blnkfinance/docflow/internal/apierror"
	"github.com/blnkfinance/docflow/internal/tenant"
	"github.com/blnkfinance/docflow/internal/xpath"
	"github.com/blnkfinance/docflow/model"
)

// Submission is one document handed to the engine.
type Submission struct {
	TenantID    string
	InterfaceID string
	FileName    string
	Content     []byte
}

// ProcessDocument runs a document through the engine synchronously and returns
// its terminal outcome. Evaluation problems end in an ERROR outcome; an error
// is returned only when the outcome itself cannot be stored.
func (d *Docflow) ProcessDocument(ctx context.Context, sub Submission) (*model.ProcessingOutcome, error) {
	ctx, span := otel.Tracer("docflow.processor").Start(ctx, "Processing document")
	defer span.End()

	outcome, err := d.newOutcome(ctx, sub)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := d.runOutcome(ctx, outcome, sub.Content); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return outcome, nil
}

// EnqueueDocument stores a PENDING outcome and hands the document to the workers.
func (d *Docflow) EnqueueDocument(ctx context.Context, sub Submission) (*model.ProcessingOutcome, error) {
	ctx, span := otel.Tracer("docflow.processor").Start(ctx, "Enqueueing document")
	defer span.End()

	if d.queue == nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "document queue is not configured", nil)
	}

	outcome, err := d.newOutcome(ctx, sub)
	if err != nil {
		return nil, err
	}

	task := DocumentTask{
		OutcomeID:   outcome.OutcomeID,
		TenantID:    outcome.TenantID,
		InterfaceID: outcome.InterfaceID,
		FileName:    outcome.FileName,
		Content:     sub.Content,
	}
	if err := d.queue.EnqueueDocument(ctx, task); err != nil {
		span.RecordError(err)
		d.abandonOutcome(ctx, outcome, fmt.Sprintf("failed to enqueue document: %v", err))
		return nil, err
	}
	return outcome, nil
}

// ProcessQueued is the asynq handler for document tasks.
func (d *Docflow) ProcessQueued(ctx context.Context, task *asynq.Task) error {
	var payload DocumentTask
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logrus.WithError(err).Error("invalid document task payload")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	outcome, err := d.datasource.GetOutcome(ctx, payload.TenantID, payload.OutcomeID)
	if err != nil {
		if isAPIError(err, apierror.ErrNotFound) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	if outcome.Status != model.StatusPending {
		logrus.WithFields(logrus.Fields{"outcome_id": outcome.OutcomeID, "status": outcome.Status}).
			Info("document already picked up, skipping")
		return nil
	}

	if err := d.runOutcome(ctx, outcome, payload.Content); err != nil {
		if isAPIError(err, apierror.ErrConflict) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	return nil
}

// newOutcome checks the tenant accepts documents and records a PENDING outcome.
func (d *Docflow) newOutcome(ctx context.Context, sub Submission) (*model.ProcessingOutcome, error) {
	if strings.TrimSpace(sub.TenantID) == "" || strings.TrimSpace(sub.InterfaceID) == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "tenant id and interface id are required", nil)
	}
	if err := d.checkTenantWritable(ctx, sub.TenantID); err != nil {
		return nil, err
	}

	outcome, err := d.datasource.CreateOutcome(ctx, model.ProcessingOutcome{
		OutcomeID:   model.GenerateUUIDWithSuffix("out"),
		TenantID:    sub.TenantID,
		InterfaceID: sub.InterfaceID,
		FileName:    sub.FileName,
		Status:      model.StatusPending,
		Fields:      map[string]string{},
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (d *Docflow) checkTenantWritable(ctx context.Context, tenantID string) error {
	t, err := d.datasource.GetTenantByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if !t.CanWrite() {
		return apierror.NewAPIError(apierror.ErrForbidden, fmt.Sprintf("tenant %s is %s", t.TenantID, strings.ToLower(string(t.Status))), nil)
	}
	return nil
}

// runOutcome drives a PENDING outcome to a terminal status. Everything below
// it sees the outcome's tenant on the context.
func (d *Docflow) runOutcome(ctx context.Context, outcome *model.ProcessingOutcome, content []byte) error {
	ctx = tenant.WithTenant(ctx, outcome.TenantID)
	if err := d.datasource.MarkOutcomeProcessing(ctx, outcome.OutcomeID); err != nil {
		return err
	}
	outcome.Status = model.StatusProcessing

	assembly, strategyName := d.evaluate(ctx, outcome.TenantID, outcome.InterfaceID, content)
	outcome.Strategy = strategyName
	outcome.Status = assembly.Status
	outcome.Fields = assembly.Fields
	outcome.ErrorMessage = assembly.ErrorMessage
	outcome.CompletedAt = ptr.Time(time.Now())
	if err := d.datasource.CompleteOutcome(ctx, outcome); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"outcome_id": outcome.OutcomeID,
		"tenant_id":  outcome.TenantID,
		"status":     outcome.Status,
		"fields":     len(outcome.Fields),
	}).Info("document processed")

	if err := d.SendWebhook(ctx, outcome); err != nil {
		logrus.WithError(err).WithField("outcome_id", outcome.OutcomeID).Error("failed to queue webhook")
	}
	return nil
}

// evaluate resolves the interface and strategy, then validates and assembles
// the document. Every failure is reported as an ERROR assembly.
func (d *Docflow) evaluate(ctx context.Context, tenantID, interfaceID string, content []byte) (model.Assembly, string) {
	ctx, span := otel.Tracer("docflow.processor").Start(ctx, "Evaluating document",
		trace.WithAttributes(attribute.String("tenant.id", tenantID), attribute.String("interface.id", interfaceID)))
	defer span.End()

	iface, err := d.datasource.GetInterface(ctx, tenantID, interfaceID)
	if err != nil {
		span.RecordError(err)
		if isAPIError(err, apierror.ErrNotFound) {
			return model.Failed(model.RuleLookupError{TenantID: tenantID, InterfaceID: interfaceID}.Error(), nil), ""
		}
		return model.Failed(err.Error(), nil), ""
	}
	if !iface.Active {
		return model.Failed(fmt.Sprintf("interface %s is inactive", iface.InterfaceID), nil), ""
	}

	s, err := d.registry.Resolve(iface.DocumentType)
	if err != nil {
		span.RecordError(err)
		return model.Failed(err.Error(), nil), ""
	}
	span.SetAttributes(attribute.String("strategy", s.Name()))

	if limit := d.config.Processing.MaxDocumentSize; limit > 0 && int64(len(content)) > limit {
		return model.Failed(fmt.Sprintf("document exceeds the maximum size of %d bytes", limit), nil), s.Name()
	}

	doc, err := xpath.ParseBytes(content)
	if err != nil {
		span.RecordError(err)
		return model.Failed(fmt.Sprintf("invalid XML document: %v", err), nil), s.Name()
	}

	if problems := s.Validate(doc, *iface); len(problems) > 0 {
		return model.Failed(strings.Join(problems, "; "), nil), s.Name()
	}

	return d.assembler.Assemble(ctx, tenantID, interfaceID, doc, s), s.Name()
}

// abandonOutcome closes an outcome that never reached the workers.
func (d *Docflow) abandonOutcome(ctx context.Context, outcome *model.ProcessingOutcome, message string) {
	if err := d.datasource.MarkOutcomeProcessing(ctx, outcome.OutcomeID); err != nil {
		logrus.WithError(err).WithField("outcome_id", outcome.OutcomeID).Error("failed to abandon outcome")
		return
	}
	outcome.Status = model.StatusError
	outcome.ErrorMessage = message
	outcome.CompletedAt = ptr.Time(time.Now())
	if err := d.datasource.CompleteOutcome(ctx, outcome); err != nil {
		logrus.WithError(err).WithField("outcome_id", outcome.OutcomeID).Error("failed to abandon outcome")
	}
}

func isAPIError(err error, code apierror.ErrorCode) bool {
	var apiErr apierror.APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
