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

var interfaceRowColumns = []string{
	"interface_id", "tenant_id", "name", "document_type", "schema_path", "root_element",
	"namespace", "description", "active", "priority", "created_at",
}

func TestCreateInterface(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	iface := model.Interface{
		InterfaceID:  "int_1",
		TenantID:     "ten_1",
		Name:         "Inbound ASN",
		DocumentType: "ASN",
		SchemaPath:   "asn.xsd",
		RootElement:  "ASN",
		Active:       true,
		Priority:     1,
		CreatedAt:    time.Now(),
	}

	mock.ExpectExec("INSERT INTO docflow.interfaces").
		WithArgs(iface.InterfaceID, iface.TenantID, iface.Name, iface.DocumentType, iface.SchemaPath, iface.RootElement,
			iface.Namespace, iface.Description, iface.Active, iface.Priority, iface.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err = ds.CreateInterface(context.Background(), iface)
	assert.NoError(t, err)

	mock.ExpectExec("INSERT INTO docflow.interfaces").WillReturnError(&pq.Error{Code: "23505"})
	_, err = ds.CreateInterface(context.Background(), iface)
	require.Error(t, err)
	assert.Equal(t, apierror.ErrConflict, err.(apierror.APIError).Code)
}

func TestGetInterface_ScopedToTenant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	rows := sqlmock.NewRows(interfaceRowColumns).
		AddRow("int_1", "ten_1", "Inbound ASN", "ASN", "asn.xsd", "ASN", "", "", true, 1, time.Now())
	mock.ExpectQuery("FROM docflow.interfaces WHERE interface_id = (.+) AND tenant_id").
		WithArgs("int_1", "ten_1").
		WillReturnRows(rows)

	iface, err := ds.GetInterface(context.Background(), "ten_1", "int_1")
	require.NoError(t, err)
	assert.Equal(t, "ASN", iface.DocumentType)

	mock.ExpectQuery("FROM docflow.interfaces WHERE interface_id = (.+) AND tenant_id").
		WithArgs("int_1", "ten_2").
		WillReturnError(sql.ErrNoRows)

	_, err = ds.GetInterface(context.Background(), "ten_2", "int_1")
	require.Error(t, err)
	assert.Equal(t, apierror.ErrNotFound, err.(apierror.APIError).Code)
}

func TestGetInterfacesByTenant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()
	rows := sqlmock.NewRows(interfaceRowColumns).
		AddRow("int_1", "ten_1", "Inbound ASN", "ASN", "asn.xsd", "ASN", "", "", true, 1, now).
		AddRow("int_2", "ten_1", "Invoices", "INVOICE", "invoice.xsd", "Invoice", "", "", false, 2, now)
	mock.ExpectQuery("FROM docflow.interfaces WHERE tenant_id").
		WithArgs("ten_1").
		WillReturnRows(rows)

	interfaces, err := ds.GetInterfacesByTenant(context.Background(), "ten_1")
	require.NoError(t, err)
	require.Len(t, interfaces, 2)
	assert.False(t, interfaces[1].Active)
}
