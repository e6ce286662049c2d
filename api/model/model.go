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

package model

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/blnkfinance/docflow/model"
)

// maxBatchSize bounds the documents accepted by one batch request.
const maxBatchSize = 100

var tenantStatuses = []interface{}{model.TenantActive, model.TenantInactive, model.TenantPending, model.TenantSuspended}

func (t *CreateTenant) ValidateCreateTenant() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Name, validation.Required),
		validation.Field(&t.Code, validation.Required, validation.Length(2, 32)),
	)
}

func (t *CreateTenant) ToTenant() model.Tenant {
	return model.Tenant{Name: t.Name, Code: t.Code}
}

func (s *UpdateTenantStatus) ValidateUpdateTenantStatus() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Status, validation.Required, validation.In(tenantStatuses...)),
	)
}

func (i *CreateInterface) ValidateCreateInterface() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.Name, validation.Required),
		validation.Field(&i.DocumentType, validation.Required),
		validation.Field(&i.Priority, validation.Min(0)),
	)
}

func (i *CreateInterface) ToInterface(tenantID string) model.Interface {
	active := true
	if i.Active != nil {
		active = *i.Active
	}
	return model.Interface{
		TenantID:     tenantID,
		Name:         i.Name,
		DocumentType: i.DocumentType,
		SchemaPath:   i.SchemaPath,
		RootElement:  i.RootElement,
		Namespace:    i.Namespace,
		Description:  i.Description,
		Active:       active,
		Priority:     i.Priority,
	}
}

func (r *CreateMappingRule) ValidateCreateMappingRule() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.SourcePath, validation.Required),
		validation.Field(&r.TargetField, validation.Required),
	)
}

func (r *CreateMappingRule) ToMappingRule(tenantID, interfaceID string) model.MappingRule {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return model.MappingRule{
		TenantID:       tenantID,
		InterfaceID:    interfaceID,
		Name:           r.Name,
		Description:    r.Description,
		SourcePath:     r.SourcePath,
		TargetField:    r.TargetField,
		Transformation: r.Transformation,
		Required:       r.Required,
		DefaultValue:   r.DefaultValue,
		Priority:       r.Priority,
		TableName:      r.TableName,
		DataType:       r.DataType,
		IsAttribute:    r.IsAttribute,
		XsdElement:     r.XsdElement,
		ValidationRule: r.ValidationRule,
		Active:         active,
	}
}

func (d *ProcessDocument) ValidateProcessDocument() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.InterfaceID, validation.Required),
		validation.Field(&d.Content, validation.Required),
	)
}

func (b *ProcessBatch) ValidateProcessBatch() error {
	if err := validation.ValidateStruct(b,
		validation.Field(&b.Documents, validation.Required, validation.Length(1, maxBatchSize)),
	); err != nil {
		return err
	}
	for i := range b.Documents {
		if err := b.Documents[i].ValidateProcessDocument(); err != nil {
			return fmt.Errorf("documents[%d]: %w", i, err)
		}
	}
	return nil
}
