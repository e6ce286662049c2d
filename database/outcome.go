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

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/blnkfinance/docflow/internal/apierror"
	"github.com/blnkfinance/docflow/model"
)

const outcomeColumns = `outcome_id, tenant_id, interface_id, file_name, status, strategy, error_message, fields, created_at, completed_at`

func (d Datasource) CreateOutcome(ctx context.Context, outcome model.ProcessingOutcome) (model.ProcessingOutcome, error) {
	ctx, span := otel.Tracer("Outcome").Start(ctx, "Saving outcome to db")
	defer span.End()

	fieldsJSON, err := json.Marshal(outcome.Fields)
	if err != nil {
		return outcome, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal fields", err)
	}

	_, err = d.Conn.ExecContext(ctx,
		`INSERT INTO docflow.processing_outcomes (`+outcomeColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		outcome.OutcomeID, outcome.TenantID, outcome.InterfaceID, outcome.FileName, outcome.Status, outcome.Strategy,
		outcome.ErrorMessage, fieldsJSON, outcome.CreatedAt, outcome.CompletedAt,
	)
	if err != nil {
		span.RecordError(err)
		return outcome, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record outcome", err)
	}

	return outcome, nil
}

// MarkOutcomeProcessing claims a PENDING outcome. A second claim of the same
// outcome finds no PENDING row and fails with a conflict.
func (d Datasource) MarkOutcomeProcessing(ctx context.Context, outcomeID string) error {
	ctx, span := otel.Tracer("Outcome").Start(ctx, "Marking outcome as processing")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx,
		`UPDATE docflow.processing_outcomes SET status = $1 WHERE outcome_id = $2 AND status = $3`,
		model.StatusProcessing, outcomeID, model.StatusPending,
	)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update outcome", err)
	}
	return expectOneRow(result, outcomeID, model.StatusPending)
}

// CompleteOutcome writes the terminal state of a PROCESSING outcome.
func (d Datasource) CompleteOutcome(ctx context.Context, outcome *model.ProcessingOutcome) error {
	ctx, span := otel.Tracer("Outcome").Start(ctx, "Completing outcome")
	defer span.End()

	if !outcome.Status.IsTerminal() {
		return apierror.NewAPIError(apierror.ErrBadRequest, fmt.Sprintf("status %s is not terminal", outcome.Status), nil)
	}

	fieldsJSON, err := json.Marshal(outcome.Fields)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal fields", err)
	}

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE docflow.processing_outcomes
		SET status = $1, strategy = $2, error_message = $3, fields = $4, completed_at = $5
		WHERE outcome_id = $6 AND status = $7
	`, outcome.Status, outcome.Strategy, outcome.ErrorMessage, fieldsJSON, outcome.CompletedAt, outcome.OutcomeID, model.StatusProcessing)
	if err != nil {
		span.RecordError(err)
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to complete outcome", err)
	}
	return expectOneRow(result, outcome.OutcomeID, model.StatusProcessing)
}

func expectOneRow(result sql.Result, outcomeID string, from model.ProcessingStatus) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("outcome '%s' is not %s", outcomeID, from), nil)
	}
	return nil
}

func (d Datasource) GetOutcome(ctx context.Context, tenantID, outcomeID string) (*model.ProcessingOutcome, error) {
	ctx, span := otel.Tracer("Outcome").Start(ctx, "Fetching outcome from db")
	defer span.End()

	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+outcomeColumns+`
		FROM docflow.processing_outcomes
		WHERE outcome_id = $1 AND tenant_id = $2
	`, outcomeID, tenantID)

	outcome := &model.ProcessingOutcome{}
	var fieldsJSON []byte
	err := row.Scan(&outcome.OutcomeID, &outcome.TenantID, &outcome.InterfaceID, &outcome.FileName, &outcome.Status,
		&outcome.Strategy, &outcome.ErrorMessage, &fieldsJSON, &outcome.CreatedAt, &outcome.CompletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Outcome with ID '%s' not found", outcomeID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve outcome", err)
	}

	if err := unmarshalFields(fieldsJSON, outcome); err != nil {
		return nil, err
	}
	return outcome, nil
}

func (d Datasource) GetOutcomesByTenant(ctx context.Context, tenantID string, limit, offset int) ([]model.ProcessingOutcome, error) {
	ctx, span := otel.Tracer("Outcome").Start(ctx, "Fetching outcomes by tenant")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+outcomeColumns+`
		FROM docflow.processing_outcomes
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve outcomes", err)
	}
	defer rows.Close()

	var outcomes []model.ProcessingOutcome
	for rows.Next() {
		outcome := model.ProcessingOutcome{}
		var fieldsJSON []byte
		if err := rows.Scan(&outcome.OutcomeID, &outcome.TenantID, &outcome.InterfaceID, &outcome.FileName, &outcome.Status,
			&outcome.Strategy, &outcome.ErrorMessage, &fieldsJSON, &outcome.CreatedAt, &outcome.CompletedAt); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan outcome data", err)
		}
		if err := unmarshalFields(fieldsJSON, &outcome); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over outcomes", err)
	}

	return outcomes, nil
}

func unmarshalFields(data []byte, outcome *model.ProcessingOutcome) error {
	outcome.Fields = map[string]string{}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &outcome.Fields); err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal fields", err)
	}
	if outcome.Fields == nil {
		outcome.Fields = map[string]string{}
	}
	return nil
}
