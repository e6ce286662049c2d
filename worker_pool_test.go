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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/docflow/internal/tenant"
	"github.com/blnkfinance/docflow/model"
)

func TestProcessBatch_MixedTenantsKeepInputOrder(t *testing.T) {
	env := newTestEnv(t)
	env.config.Processing.MaxWorkers = 2

	var subs []Submission
	for i := 1; i <= 6; i++ {
		tenantID := fmt.Sprintf("ten_%d", i)
		interfaceID := fmt.Sprintf("int_%d", i)
		expectRun(env, tenantID, interfaceID, fmt.Sprintf("out_%d", i))
		env.ds.On("GetInterface", mock.Anything, tenantID, interfaceID).Return(asnInterface(tenantID, interfaceID), nil)

		r := rule("document number", "//DocumentNumber", "doc_number", 1)
		r.TenantID, r.InterfaceID = tenantID, interfaceID
		env.ds.On("GetActiveRules", mock.Anything, tenantID, interfaceID).Return([]model.MappingRule{r}, nil)

		subs = append(subs, Submission{
			TenantID:    tenantID,
			InterfaceID: interfaceID,
			FileName:    fmt.Sprintf("asn-%d.xml", i),
			Content:     []byte(fmt.Sprintf(`<ASN><DocumentNumber>%d</DocumentNumber></ASN>`, i)),
		})
	}

	results := env.docflow.ProcessBatch(context.Background(), subs)
	require.Len(t, results, len(subs))
	for i, result := range results {
		require.Empty(t, result.Error)
		require.NotNil(t, result.Outcome)
		assert.Equal(t, subs[i].FileName, result.FileName)
		assert.Equal(t, subs[i].TenantID, result.Outcome.TenantID)
		assert.Equal(t, fmt.Sprintf("%d", i+1), result.Outcome.Fields["doc_number"])
	}
}

func TestProcessBatch_ReportsPerDocumentErrors(t *testing.T) {
	env := newTestEnv(t)
	suspended := activeTenant("ten_2")
	suspended.Status = model.TenantSuspended

	expectRun(env, "ten_1", "int_1", "out_1")
	env.ds.On("GetInterface", mock.Anything, "ten_1", "int_1").Return(asnInterface("ten_1", "int_1"), nil)
	env.ds.On("GetActiveRules", mock.Anything, "ten_1", "int_1").Return([]model.MappingRule{}, nil)
	env.ds.On("GetTenantByID", mock.Anything, "ten_2").Return(suspended, nil)

	results := env.docflow.ProcessBatch(context.Background(), []Submission{
		{TenantID: "ten_1", InterfaceID: "int_1", FileName: "a.xml", Content: []byte("<ASN/>")},
		{TenantID: "ten_2", InterfaceID: "int_2", FileName: "b.xml", Content: []byte("<ASN/>")},
	})
	require.Len(t, results, 2)
	assert.Equal(t, model.StatusSuccess, results[0].Outcome.Status)
	assert.Nil(t, results[1].Outcome)
	assert.Contains(t, results[1].Error, "suspended")
}

func TestProcessBatch_SingleWorkerSwitchesTenants(t *testing.T) {
	env := newTestEnv(t)
	env.config.Processing.MaxWorkers = 1

	for _, tenantID := range []string{"ten_1", "ten_2"} {
		interfaceID := "int_" + tenantID[len("ten_"):]
		expectRun(env, tenantID, interfaceID, "out_"+tenantID)
		env.ds.On("GetInterface", mock.Anything, tenantID, interfaceID).Return(asnInterface(tenantID, interfaceID), nil)
		env.ds.On("GetActiveRules", mock.Anything, tenantID, interfaceID).Return([]model.MappingRule{}, nil)
	}

	results := env.docflow.ProcessBatch(context.Background(), []Submission{
		{TenantID: "ten_1", InterfaceID: "int_1", FileName: "a.xml", Content: []byte("<ASN/>")},
		{TenantID: "", InterfaceID: "int_1", FileName: "anonymous.xml", Content: []byte("<ASN/>")},
		{TenantID: "ten_2", InterfaceID: "int_2", FileName: "b.xml", Content: []byte("<ASN/>")},
		{TenantID: "ten_1", InterfaceID: "int_1", FileName: "c.xml", Content: []byte("<ASN/>")},
	})
	require.Len(t, results, 4)
	for _, i := range []int{0, 2, 3} {
		require.Empty(t, results[i].Error, results[i].FileName)
		assert.Equal(t, model.StatusSuccess, results[i].Outcome.Status)
	}
	assert.Equal(t, "ten_2", results[2].Outcome.TenantID)
	assert.Nil(t, results[1].Outcome)
	assert.Contains(t, results[1].Error, "tenant id is required")

	for _, call := range env.ds.Calls {
		if call.Method != "MarkOutcomeProcessing" {
			continue
		}
		scoped, ok := tenant.FromContext(call.Arguments.Get(0).(context.Context))
		require.True(t, ok)
		assert.Equal(t, "out_"+scoped, call.Arguments.String(1))
	}
}

func TestProcessBatch_Empty(t *testing.T) {
	env := newTestEnv(t)
	assert.Empty(t, env.docflow.ProcessBatch(context.Background(), nil))
}
