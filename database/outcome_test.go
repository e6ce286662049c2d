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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/blnkfinance/docflow/internal/apierror"
	"github.com/blnkfinance/docflow/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var outcomeRowColumns = []string{
	"outcome_id", "tenant_id", "interface_id", "file_name", "status", "strategy",
	"error_message", "fields", "created_at", "completed_at",
}

func TestCreateOutcome(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	outcome := model.ProcessingOutcome{
		OutcomeID:   "out_1",
		TenantID:    "ten_1",
		InterfaceID: "int_1",
		FileName:    "asn.xml",
		Status:      model.StatusPending,
		Fields:      map[string]string{},
		CreatedAt:   time.Now(),
	}

	mock.ExpectExec("INSERT INTO docflow.processing_outcomes").
		WithArgs(outcome.OutcomeID, outcome.TenantID, outcome.InterfaceID, outcome.FileName, outcome.Status,
			outcome.Strategy, outcome.ErrorMessage, []byte("{}"), outcome.CreatedAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err = ds.CreateOutcome(context.Background(), outcome)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkOutcomeProcessing_OnlyOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE docflow.processing_outcomes SET status").
		WithArgs(model.StatusProcessing, "out_1", model.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, ds.MarkOutcomeProcessing(context.Background(), "out_1"))

	mock.ExpectExec("UPDATE docflow.processing_outcomes SET status").
		WithArgs(model.StatusProcessing, "out_1", model.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = ds.MarkOutcomeProcessing(context.Background(), "out_1")
	require.Error(t, err)
	assert.Equal(t, apierror.ErrConflict, err.(apierror.APIError).Code)
}

func TestCompleteOutcome(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	completedAt := time.Now()
	outcome := &model.ProcessingOutcome{
		OutcomeID:   "out_1",
		Status:      model.StatusSuccess,
		Strategy:    "asn",
		Fields:      map[string]string{"shipment_number": "SH-1"},
		CompletedAt: &completedAt,
	}

	mock.ExpectExec("UPDATE docflow.processing_outcomes SET status").
		WithArgs(model.StatusSuccess, "asn", "", []byte(`{"shipment_number":"SH-1"}`), completedAt, "out_1", model.StatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, ds.CompleteOutcome(context.Background(), outcome))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteOutcome_RejectsNonTerminal(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	err = ds.CompleteOutcome(context.Background(), &model.ProcessingOutcome{OutcomeID: "out_1", Status: model.StatusPending})
	require.Error(t, err)
	assert.Equal(t, apierror.ErrBadRequest, err.(apierror.APIError).Code)
}

func TestGetOutcome(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()
	rows := sqlmock.NewRows(outcomeRowColumns).
		AddRow("out_1", "ten_1", "int_1", "asn.xml", "ERROR", "asn", "required field missing", []byte(`{}`), now, now)
	mock.ExpectQuery("FROM docflow.processing_outcomes WHERE outcome_id").
		WithArgs("out_1", "ten_1").
		WillReturnRows(rows)

	outcome, err := ds.GetOutcome(context.Background(), "ten_1", "out_1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusError, outcome.Status)
	assert.NotNil(t, outcome.Fields)
	assert.Empty(t, outcome.Fields)
	require.NotNil(t, outcome.CompletedAt)

	mock.ExpectQuery("FROM docflow.processing_outcomes WHERE outcome_id").
		WithArgs("out_1", "ten_2").
		WillReturnError(sql.ErrNoRows)
	_, err = ds.GetOutcome(context.Background(), "ten_2", "out_1")
	require.Error(t, err)
	assert.Equal(t, apierror.ErrNotFound, err.(apierror.APIError).Code)
}

func TestGetOutcomesByTenant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()
	rows := sqlmock.NewRows(outcomeRowColumns).
		AddRow("out_2", "ten_1", "int_1", "b.xml", "SUCCESS", "asn", "", []byte(`{"a":"1"}`), now, now).
		AddRow("out_1", "ten_1", "int_1", "a.xml", "PENDING", "", "", nil, now.Add(-time.Minute), nil)
	mock.ExpectQuery("FROM docflow.processing_outcomes WHERE tenant_id").
		WithArgs("ten_1", 10, 0).
		WillReturnRows(rows)

	outcomes, err := ds.GetOutcomesByTenant(context.Background(), "ten_1", 10, 0)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "1", outcomes[0].Fields["a"])
	assert.Nil(t, outcomes[1].CompletedAt)
	assert.Empty(t, outcomes[1].Fields)
}
