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
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTenant_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	tenant := model.Tenant{TenantID: "ten_1", Name: "Acme", Code: "ACME", Status: model.TenantActive, CreatedAt: time.Now()}

	mock.ExpectExec("INSERT INTO docflow.tenants").
		WithArgs(tenant.TenantID, tenant.Name, tenant.Code, tenant.Status, tenant.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := ds.CreateTenant(context.Background(), tenant)
	assert.NoError(t, err)
	assert.Equal(t, tenant, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTenant_DuplicateCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	tenant := model.Tenant{TenantID: "ten_1", Code: "ACME", Status: model.TenantActive}

	mock.ExpectExec("INSERT INTO docflow.tenants").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err = ds.CreateTenant(context.Background(), tenant)
	require.Error(t, err)
	assert.Equal(t, apierror.ErrConflict, err.(apierror.APIError).Code)
}

func TestGetTenantByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	rows := sqlmock.NewRows([]string{"tenant_id", "name", "code", "status", "created_at"}).
		AddRow("ten_1", "Acme", "ACME", "SUSPENDED", now)
	mock.ExpectQuery("SELECT tenant_id, name, code, status, created_at FROM docflow.tenants WHERE tenant_id").
		WithArgs("ten_1").
		WillReturnRows(rows)

	tenant, err := ds.GetTenantByID(context.Background(), "ten_1")
	require.NoError(t, err)
	assert.Equal(t, "ACME", tenant.Code)
	assert.Equal(t, model.TenantSuspended, tenant.Status)
	assert.False(t, tenant.CanWrite())
}

func TestGetTenantByCode_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	mock.ExpectQuery("FROM docflow.tenants WHERE code").
		WithArgs("NOPE").
		WillReturnError(sql.ErrNoRows)

	_, err = ds.GetTenantByCode(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Equal(t, apierror.ErrNotFound, err.(apierror.APIError).Code)
}

func TestGetAllTenants(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()
	rows := sqlmock.NewRows([]string{"tenant_id", "name", "code", "status", "created_at"}).
		AddRow("ten_2", "Globex", "GLOBEX", "ACTIVE", now).
		AddRow("ten_1", "Acme", "ACME", "PENDING", now.Add(-time.Hour))
	mock.ExpectQuery("FROM docflow.tenants ORDER BY created_at DESC").
		WithArgs(20, 0).
		WillReturnRows(rows)

	tenants, err := ds.GetAllTenants(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Len(t, tenants, 2)
	assert.Equal(t, "ten_2", tenants[0].TenantID)
}

func TestUpdateTenantStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE docflow.tenants SET status").
		WithArgs(model.TenantSuspended, "ten_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, ds.UpdateTenantStatus(context.Background(), "ten_1", model.TenantSuspended))

	mock.ExpectExec("UPDATE docflow.tenants SET status").
		WithArgs(model.TenantActive, "ten_404").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = ds.UpdateTenantStatus(context.Background(), "ten_404", model.TenantActive)
	require.Error(t, err)
	assert.Equal(t, apierror.ErrNotFound, err.(apierror.APIError).Code)
}
