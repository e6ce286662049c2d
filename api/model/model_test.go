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
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/wacul/ptr"

	"github.com/blnkfinance/docflow/model"
)

func TestValidateCreateTenant(t *testing.T) {
	valid := CreateTenant{Name: gofakeit.Company(), Code: "ACME"}
	assert.NoError(t, valid.ValidateCreateTenant())

	missing := CreateTenant{Name: gofakeit.Company()}
	assert.Error(t, missing.ValidateCreateTenant())

	short := CreateTenant{Name: gofakeit.Company(), Code: "A"}
	assert.Error(t, short.ValidateCreateTenant())
}

func TestValidateUpdateTenantStatus(t *testing.T) {
	valid := UpdateTenantStatus{Status: model.TenantSuspended}
	assert.NoError(t, valid.ValidateUpdateTenantStatus())

	invalid := UpdateTenantStatus{Status: "ARCHIVED"}
	assert.Error(t, invalid.ValidateUpdateTenantStatus())
}

func TestCreateInterface_ToInterface(t *testing.T) {
	req := CreateInterface{Name: "Inbound ASN", DocumentType: "ASN"}
	assert.NoError(t, req.ValidateCreateInterface())
	assert.True(t, req.ToInterface("ten_1").Active)

	req.Active = ptr.Bool(false)
	iface := req.ToInterface("ten_1")
	assert.False(t, iface.Active)
	assert.Equal(t, "ten_1", iface.TenantID)

	assert.Error(t, (&CreateInterface{Name: "no type"}).ValidateCreateInterface())
}

func TestCreateMappingRule_ToMappingRule(t *testing.T) {
	req := CreateMappingRule{Name: "number", SourcePath: "//DocumentNumber", TargetField: "doc_number", DefaultValue: ptr.String("0")}
	assert.NoError(t, req.ValidateCreateMappingRule())

	rule := req.ToMappingRule("ten_1", "int_1")
	assert.True(t, rule.Active)
	assert.Equal(t, "int_1", rule.InterfaceID)
	assert.Equal(t, "0", *rule.DefaultValue)

	assert.Error(t, (&CreateMappingRule{Name: "no path", TargetField: "x"}).ValidateCreateMappingRule())
}

func TestValidateProcessBatch(t *testing.T) {
	assert.Error(t, (&ProcessBatch{}).ValidateProcessBatch())

	batch := ProcessBatch{Documents: []ProcessDocument{
		{InterfaceID: "int_1", FileName: "a.xml", Content: "<ASN/>"},
		{InterfaceID: "int_1", FileName: "b.xml"},
	}}
	err := batch.ValidateProcessBatch()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "documents[1]")

	batch.Documents[1].Content = "<ASN/>"
	assert.NoError(t, batch.ValidateProcessBatch())
}
