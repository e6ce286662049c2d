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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/docflow/internal/apierror"
	redlock "github.com/blnkfinance/docflow/internal/lock"
	"github.com/blnkfinance/docflow/model"
)

const yamlRuleFile = `
rules:
  - name: document number
    source_path: /ASN/Header/DocumentNumber
    target_field: doc_number
    required: true
    priority: 1
  - name: ship date
    source_path: //ShipDate
    target_field: ship_date
    transformation: asn_date
    default_value: "19700101"
    priority: 2
  - name: legacy carrier
    source_path: //Carrier
    target_field: carrier
    transformation: carrier_code
    active: false
`

const jsonRuleFile = `{"rules": [{"name": "number", "source_path": "//DocumentNumber", "target_field": "doc_number", "priority": 1}]}`

func TestParseRuleFile(t *testing.T) {
	file, err := ParseRuleFile([]byte(yamlRuleFile), "")
	require.NoError(t, err)
	require.Len(t, file.Rules, 3)

	rules := []model.MappingRule{file.Rules[0].rule(), file.Rules[1].rule(), file.Rules[2].rule()}
	assert.True(t, rules[0].Active)
	assert.True(t, rules[0].Required)
	require.NotNil(t, rules[1].DefaultValue)
	assert.Equal(t, "19700101", *rules[1].DefaultValue)
	assert.False(t, rules[2].Active)

	file, err = ParseRuleFile([]byte(jsonRuleFile), "")
	require.NoError(t, err)
	require.Len(t, file.Rules, 1)
	assert.Equal(t, 1, file.Rules[0].Priority)

	file, err = ParseRuleFile([]byte(jsonRuleFile), "yml")
	require.NoError(t, err)
	assert.Len(t, file.Rules, 1)
}

func TestParseRuleFile_Rejects(t *testing.T) {
	tests := map[string]string{
		"missing target":   `{"rules": [{"name": "n", "source_path": "//A"}]}`,
		"unknown property": `{"rules": [{"name": "n", "source_path": "//A", "target_field": "a", "xpath": "//B"}]}`,
		"wrong type":       "rules:\n  - name: n\n    source_path: //A\n    target_field: a\n    priority: high\n",
		"not an object":    `[1, 2]`,
		"empty":            ``,
		"broken yaml":      "rules: [",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRuleFile([]byte(content), "")
			assert.Error(t, err)
		})
	}

	_, err := ParseRuleFile([]byte(jsonRuleFile), "csv")
	assert.Error(t, err)
}

func TestImportRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.ds.On("GetInterface", mock.Anything, "ten_1", "int_1").Return(asnInterface("ten_1", "int_1"), nil)
	env.ds.On("ReplaceMappingRules", mock.Anything, "ten_1", "int_1", mock.MatchedBy(func(rules []model.MappingRule) bool {
		for _, r := range rules {
			if r.TenantID != "ten_1" || r.InterfaceID != "int_1" || r.RuleID == "" {
				return false
			}
		}
		return len(rules) == 3
	})).Return([]model.MappingRule{rule("a", "//A", "a", 1), rule("b", "//B", "b", 2), rule("c", "//C", "c", 3)}, nil)

	result, err := env.docflow.ImportRules(ctx, "ten_1", "int_1", []byte(yamlRuleFile), ImportFormatYAML)
	require.NoError(t, err)
	assert.Len(t, result.Imported, 3)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "carrier_code")

	// the lock is released afterwards
	assert.False(t, env.redis.Exists(redlock.RuleSetKey("ten_1", "int_1")))
}

func TestImportRules_LockHeld(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.ds.On("GetInterface", mock.Anything, "ten_1", "int_1").Return(asnInterface("ten_1", "int_1"), nil)

	holder := redlock.NewLocker(env.docflow.redis, redlock.RuleSetKey("ten_1", "int_1"), "other-import")
	require.NoError(t, holder.Lock(ctx, time.Minute))

	waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err := env.docflow.ImportRules(waitCtx, "ten_1", "int_1", []byte(jsonRuleFile), ImportFormatJSON)
	require.Error(t, err)
	assert.Equal(t, apierror.ErrConflict, err.(apierror.APIError).Code)
	env.ds.AssertNotCalled(t, "ReplaceMappingRules", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestImportRules_DuplicateTargets(t *testing.T) {
	env := newTestEnv(t)
	env.ds.On("GetInterface", mock.Anything, "ten_1", "int_1").Return(asnInterface("ten_1", "int_1"), nil)

	content := `{"rules": [
		{"name": "a", "source_path": "//A", "target_field": "same"},
		{"name": "b", "source_path": "//B", "target_field": "same"}
	]}`
	_, err := env.docflow.ImportRules(context.Background(), "ten_1", "int_1", []byte(content), "")
	require.Error(t, err)
	assert.Equal(t, apierror.ErrConflict, err.(apierror.APIError).Code)
}

func TestImportRules_InvalidFile(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.docflow.ImportRules(context.Background(), "ten_1", "int_1", []byte("rules: 5"), "")
	require.Error(t, err)
	assert.Equal(t, apierror.ErrInvalidInput, err.(apierror.APIError).Code)
}
