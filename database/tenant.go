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
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/blnkfinance/docflow/internal/apierror"
	"github.com/blnkfinance/docflow/model"
)

func (d Datasource) CreateTenant(ctx context.Context, tenant model.Tenant) (model.Tenant, error) {
	ctx, span := otel.Tracer("Tenant").Start(ctx, "Saving tenant to db")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO docflow.tenants (tenant_id, name, code, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		tenant.TenantID, tenant.Name, tenant.Code, tenant.Status, tenant.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		if isUniqueViolation(err) {
			return tenant, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("tenant with code '%s' already exists", tenant.Code), err)
		}
		return tenant, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create tenant", err)
	}

	return tenant, nil
}

func (d Datasource) GetTenantByID(ctx context.Context, id string) (*model.Tenant, error) {
	ctx, span := otel.Tracer("Tenant").Start(ctx, "Fetching tenant by id")
	defer span.End()

	row := d.Conn.QueryRowContext(ctx, `
		SELECT tenant_id, name, code, status, created_at
		FROM docflow.tenants
		WHERE tenant_id = $1
	`, id)
	return scanTenant(row, id)
}

func (d Datasource) GetTenantByCode(ctx context.Context, code string) (*model.Tenant, error) {
	ctx, span := otel.Tracer("Tenant").Start(ctx, "Fetching tenant by code")
	defer span.End()

	row := d.Conn.QueryRowContext(ctx, `
		SELECT tenant_id, name, code, status, created_at
		FROM docflow.tenants
		WHERE code = $1
	`, code)
	return scanTenant(row, code)
}

func scanTenant(row *sql.Row, key string) (*model.Tenant, error) {
	tenant := &model.Tenant{}
	err := row.Scan(&tenant.TenantID, &tenant.Name, &tenant.Code, &tenant.Status, &tenant.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Tenant '%s' not found", key), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve tenant", err)
	}
	return tenant, nil
}

func (d Datasource) GetAllTenants(ctx context.Context, limit, offset int) ([]model.Tenant, error) {
	ctx, span := otel.Tracer("Tenant").Start(ctx, "Fetching tenants")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT tenant_id, name, code, status, created_at
		FROM docflow.tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve tenants", err)
	}
	defer rows.Close()

	var tenants []model.Tenant
	for rows.Next() {
		tenant := model.Tenant{}
		if err := rows.Scan(&tenant.TenantID, &tenant.Name, &tenant.Code, &tenant.Status, &tenant.CreatedAt); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan tenant data", err)
		}
		tenants = append(tenants, tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over tenants", err)
	}

	return tenants, nil
}

func (d Datasource) UpdateTenantStatus(ctx context.Context, id string, status model.TenantStatus) error {
	ctx, span := otel.Tracer("Tenant").Start(ctx, "Updating tenant status")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `UPDATE docflow.tenants SET status = $1 WHERE tenant_id = $2`, status, id)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update tenant status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Tenant '%s' not found", id), nil)
	}

	return nil
}
