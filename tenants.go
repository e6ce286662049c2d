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
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/docflow/internal/apierror"
	"github.com/blnkfinance/docflow/model"
)

// CreateTenant registers a tenant. New tenants start ACTIVE unless a status is given.
func (d *Docflow) CreateTenant(ctx context.Context, t model.Tenant) (model.Tenant, error) {
	t.Name = strings.TrimSpace(t.Name)
	t.Code = strings.ToUpper(strings.TrimSpace(t.Code))
	if t.Status == "" {
		t.Status = model.TenantActive
	}
	if err := validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required),
		validation.Field(&t.Code, validation.Required, validation.Length(2, 32)),
		validation.Field(&t.Status, validation.In(model.TenantActive, model.TenantInactive, model.TenantPending, model.TenantSuspended)),
	); err != nil {
		return t, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}

	t.TenantID = model.GenerateUUIDWithSuffix("ten")
	t.CreatedAt = time.Now()
	return d.datasource.CreateTenant(ctx, t)
}

func (d *Docflow) GetTenant(ctx context.Context, tenantID string) (*model.Tenant, error) {
	return d.datasource.GetTenantByID(ctx, tenantID)
}

// ResolveTenant finds a tenant by id, falling back to its code.
func (d *Docflow) ResolveTenant(ctx context.Context, idOrCode string) (*model.Tenant, error) {
	t, err := d.datasource.GetTenantByID(ctx, idOrCode)
	if err == nil {
		return t, nil
	}
	if !isAPIError(err, apierror.ErrNotFound) {
		return nil, err
	}
	return d.datasource.GetTenantByCode(ctx, strings.ToUpper(strings.TrimSpace(idOrCode)))
}

func (d *Docflow) GetAllTenants(ctx context.Context, limit, offset int) ([]model.Tenant, error) {
	return d.datasource.GetAllTenants(ctx, limit, offset)
}

// UpdateTenantStatus moves a tenant between lifecycle states. Suspended and
// inactive tenants keep their data but stop accepting documents.
func (d *Docflow) UpdateTenantStatus(ctx context.Context, tenantID string, status model.TenantStatus) error {
	if err := validation.Validate(status, validation.Required,
		validation.In(model.TenantActive, model.TenantInactive, model.TenantPending, model.TenantSuspended)); err != nil {
		return apierror.NewAPIError(apierror.ErrInvalidInput, "status: "+err.Error(), nil)
	}
	if err := d.datasource.UpdateTenantStatus(ctx, tenantID, status); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"tenant_id": tenantID, "status": status}).Info("tenant status updated")
	return nil
}

// CreateInterface registers a document interface for a tenant. When the
// interface names a schema but leaves the root element or namespace empty,
// they are read from the schema.
func (d *Docflow) CreateInterface(ctx context.Context, iface model.Interface) (model.Interface, error) {
	iface.Name = strings.TrimSpace(iface.Name)
	iface.DocumentType = model.NormalizeDocumentType(iface.DocumentType)
	iface.SchemaPath = strings.TrimSpace(iface.SchemaPath)
	if err := validation.ValidateStruct(&iface,
		validation.Field(&iface.TenantID, validation.Required),
		validation.Field(&iface.Name, validation.Required),
		validation.Field(&iface.DocumentType, validation.Required),
	); err != nil {
		return iface, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}

	if _, err := d.datasource.GetTenantByID(ctx, iface.TenantID); err != nil {
		return iface, err
	}
	if _, err := d.registry.Resolve(iface.DocumentType); err != nil {
		return iface, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}

	if iface.SchemaPath != "" && (iface.RootElement == "" || iface.Namespace == "") {
		info, err := d.schemas.Describe(iface.SchemaPath, iface.TenantID)
		if err != nil {
			return iface, err
		}
		if iface.RootElement == "" {
			iface.RootElement = info.RootElement
		}
		if iface.Namespace == "" {
			iface.Namespace = info.Namespace
		}
	}

	iface.InterfaceID = model.GenerateUUIDWithSuffix("int")
	iface.CreatedAt = time.Now()
	return d.datasource.CreateInterface(ctx, iface)
}

func (d *Docflow) GetInterface(ctx context.Context, tenantID, interfaceID string) (*model.Interface, error) {
	return d.datasource.GetInterface(ctx, tenantID, interfaceID)
}

func (d *Docflow) GetInterfaces(ctx context.Context, tenantID string) ([]model.Interface, error) {
	return d.datasource.GetInterfacesByTenant(ctx, tenantID)
}

// GetSchemaStructure lists the elements of the schema an interface points at.
func (d *Docflow) GetSchemaStructure(ctx context.Context, tenantID, interfaceID string) ([]model.ElementInfo, error) {
	iface, err := d.datasource.GetInterface(ctx, tenantID, interfaceID)
	if err != nil {
		return nil, err
	}
	if iface.SchemaPath == "" {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "interface has no schema", nil)
	}
	return d.schemas.Structure(iface.SchemaPath, tenantID)
}

// Schemas returns the schema introspector.
func (d *Docflow) Schemas() *SchemaIntrospector {
	return d.schemas
}

func (d *Docflow) GetOutcome(ctx context.Context, tenantID, outcomeID string) (*model.ProcessingOutcome, error) {
	return d.datasource.GetOutcome(ctx, tenantID, outcomeID)
}

func (d *Docflow) GetOutcomes(ctx context.Context, tenantID string, limit, offset int) ([]model.ProcessingOutcome, error) {
	return d.datasource.GetOutcomesByTenant(ctx, tenantID, limit, offset)
}

// GetRules lists every rule of the interface, active or not.
func (d *Docflow) GetRules(ctx context.Context, tenantID, interfaceID string) ([]model.MappingRule, error) {
	return d.datasource.GetRulesByInterface(ctx, tenantID, interfaceID)
}
