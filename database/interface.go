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

const interfaceColumns = `interface_id, tenant_id, name, document_type, schema_path, root_element, namespace, description, active, priority, created_at`

func (d Datasource) CreateInterface(ctx context.Context, iface model.Interface) (model.Interface, error) {
	ctx, span := otel.Tracer("Interface").Start(ctx, "Saving interface to db")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO docflow.interfaces (`+interfaceColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		iface.InterfaceID, iface.TenantID, iface.Name, iface.DocumentType, iface.SchemaPath, iface.RootElement,
		iface.Namespace, iface.Description, iface.Active, iface.Priority, iface.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		if isUniqueViolation(err) {
			return iface, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("interface '%s' already exists for this tenant", iface.Name), err)
		}
		return iface, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create interface", err)
	}

	return iface, nil
}

// GetInterface only returns the interface when it belongs to tenantID. A foreign
// interface is indistinguishable from a missing one.
func (d Datasource) GetInterface(ctx context.Context, tenantID, interfaceID string) (*model.Interface, error) {
	ctx, span := otel.Tracer("Interface").Start(ctx, "Fetching interface from db")
	defer span.End()

	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+interfaceColumns+`
		FROM docflow.interfaces
		WHERE interface_id = $1 AND tenant_id = $2
	`, interfaceID, tenantID)

	iface := &model.Interface{}
	err := row.Scan(&iface.InterfaceID, &iface.TenantID, &iface.Name, &iface.DocumentType, &iface.SchemaPath,
		&iface.RootElement, &iface.Namespace, &iface.Description, &iface.Active, &iface.Priority, &iface.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Interface with ID '%s' not found", interfaceID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve interface", err)
	}

	return iface, nil
}

func (d Datasource) GetInterfacesByTenant(ctx context.Context, tenantID string) ([]model.Interface, error) {
	ctx, span := otel.Tracer("Interface").Start(ctx, "Fetching interfaces by tenant")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+interfaceColumns+`
		FROM docflow.interfaces
		WHERE tenant_id = $1
		ORDER BY priority, name
	`, tenantID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve interfaces", err)
	}
	defer rows.Close()

	var interfaces []model.Interface
	for rows.Next() {
		iface := model.Interface{}
		if err := rows.Scan(&iface.InterfaceID, &iface.TenantID, &iface.Name, &iface.DocumentType, &iface.SchemaPath,
			&iface.RootElement, &iface.Namespace, &iface.Description, &iface.Active, &iface.Priority, &iface.CreatedAt); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan interface data", err)
		}
		interfaces = append(interfaces, iface)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over interfaces", err)
	}

	return interfaces, nil
}
