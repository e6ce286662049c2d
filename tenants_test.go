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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/docflow/internal/apierror"
	"github.com/blnkfinance/docflow/model"
)

func TestCreateTenant(t *testing.T) {
	env := newTestEnv(t)
	env.ds.On("CreateTenant", mock.Anything, mock.MatchedBy(func(tn model.Tenant) bool {
		return tn.Code == "ACME" && tn.Status == model.TenantActive && tn.TenantID != ""
	})).Return(model.Tenant{TenantID: "ten_1", Name: "Acme", Code: "ACME", Status: model.TenantActive}, nil)

	created, err := env.docflow.CreateTenant(context.Background(), model.Tenant{Name: " Acme ", Code: " acme "})
	require.NoError(t, err)
	assert.Equal(t, "ten_1", created.TenantID)

	_, err = env.docflow.CreateTenant(context.Background(), model.Tenant{Name: "No code"})
	require.Error(t, err)
	assert.Equal(t, apierror.ErrInvalidInput, err.(apierror.APIError).Code)

	_, err = env.docflow.CreateTenant(context.Background(), model.Tenant{Name: "Bad", Code: "BAD", Status: "DELETED"})
	require.Error(t, err)
}

func TestResolveTenant_FallsBackToCode(t *testing.T) {
	env := newTestEnv(t)
	notFound := apierror.NewAPIError(apierror.ErrNotFound, "tenant not found", nil)
	env.ds.On("GetTenantByID", mock.Anything, "acme").Return(nil, notFound)
	env.ds.On("GetTenantByCode", mock.Anything, "ACME").Return(activeTenant("ten_1"), nil)

	tenant, err := env.docflow.ResolveTenant(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "ten_1", tenant.TenantID)
}

func TestUpdateTenantStatus(t *testing.T) {
	env := newTestEnv(t)
	env.ds.On("UpdateTenantStatus", mock.Anything, "ten_1", model.TenantSuspended).Return(nil)

	assert.NoError(t, env.docflow.UpdateTenantStatus(context.Background(), "ten_1", model.TenantSuspended))
	err := env.docflow.UpdateTenantStatus(context.Background(), "ten_1", "GONE")
	require.Error(t, err)
	assert.Equal(t, apierror.ErrInvalidInput, err.(apierror.APIError).Code)
}

func TestCreateInterface_FillsFromSchema(t *testing.T) {
	env := newTestEnv(t)
	writeSchema(t, env.config.Processing.SchemaDir, "asn.xsd", asnSchema)

	env.ds.On("GetTenantByID", mock.Anything, "ten_1").Return(activeTenant("ten_1"), nil)
	env.ds.On("CreateInterface", mock.Anything, mock.MatchedBy(func(i model.Interface) bool {
		return i.RootElement == "ASN" && i.Namespace == "urn:docflow:asn" && i.DocumentType == "ASN" && i.InterfaceID != ""
	})).Return(*asnInterface("ten_1", "int_1"), nil)

	_, err := env.docflow.CreateInterface(context.Background(), model.Interface{
		TenantID: "ten_1", Name: "Inbound ASN", DocumentType: "asn", SchemaPath: "asn.xsd", Active: true,
	})
	require.NoError(t, err)
	env.ds.AssertExpectations(t)
}

func TestCreateInterface_UnknownDocumentType(t *testing.T) {
	env := newTestEnv(t)
	env.ds.On("GetTenantByID", mock.Anything, "ten_1").Return(activeTenant("ten_1"), nil)

	_, err := env.docflow.CreateInterface(context.Background(), model.Interface{TenantID: "ten_1", Name: "EDI", DocumentType: "EDIFACT"})
	require.Error(t, err)
	assert.Equal(t, apierror.ErrInvalidInput, err.(apierror.APIError).Code)
}

func TestGetSchemaStructure(t *testing.T) {
	env := newTestEnv(t)
	writeSchema(t, env.config.Processing.SchemaDir, "asn.xsd", asnSchema)

	iface := asnInterface("ten_1", "int_1")
	iface.SchemaPath = "asn.xsd"
	env.ds.On("GetInterface", mock.Anything, "ten_1", "int_1").Return(iface, nil)
	env.ds.On("GetInterface", mock.Anything, "ten_1", "int_2").Return(asnInterface("ten_1", "int_2"), nil)

	elements, err := env.docflow.GetSchemaStructure(context.Background(), "ten_1", "int_1")
	require.NoError(t, err)
	assert.Len(t, elements, 5)

	_, err = env.docflow.GetSchemaStructure(context.Background(), "ten_1", "int_2")
	require.Error(t, err)
	assert.Equal(t, apierror.ErrBadRequest, err.(apierror.APIError).Code)
}
