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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wacul/ptr"
)

func TestGenerateUUIDWithSuffix(t *testing.T) {
	id := GenerateUUIDWithSuffix("rul")
	assert.Contains(t, id, "rul_")
	assert.Len(t, id, len("rul_")+36)
}

func TestNormalizeDocumentType(t *testing.T) {
	assert.Equal(t, "ASN", NormalizeDocumentType(" asn "))
	assert.Equal(t, "INVOICE", NormalizeDocumentType("Invoice"))
}

func TestSortRules(t *testing.T) {
	rules := []MappingRule{
		{Name: "c", Priority: 3},
		{Name: "b", Priority: 1},
		{Name: "a", Priority: 1},
		{Name: "d", Priority: 2},
	}
	SortRules(rules)

	var names []string
	for _, r := range rules {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"a", "b", "d", "c"}, names)
}

func TestDuplicateTargets(t *testing.T) {
	rules := []MappingRule{
		{Name: "one", TargetField: "doc_number", Active: true},
		{Name: "two", TargetField: "doc_number", Active: true},
		{Name: "three", TargetField: "doc_number", Active: true},
		{Name: "four", TargetField: "ship_date", Active: true},
		{Name: "five", TargetField: "ship_date", Active: false},
	}
	assert.Equal(t, []string{"doc_number"}, DuplicateTargets(rules))
}

func TestMappingRule_HasDefault(t *testing.T) {
	assert.False(t, MappingRule{}.HasDefault())
	assert.False(t, MappingRule{DefaultValue: ptr.String("")}.HasDefault())
	assert.True(t, MappingRule{DefaultValue: ptr.String("N/A")}.HasDefault())
}

func TestProcessingStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to ProcessingStatus
		allowed  bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusSuccess, false},
		{StatusProcessing, StatusSuccess, true},
		{StatusProcessing, StatusError, true},
		{StatusProcessing, StatusPending, false},
		{StatusSuccess, StatusError, false},
		{StatusError, StatusProcessing, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTenant_CanWrite(t *testing.T) {
	assert.True(t, Tenant{Status: TenantActive}.CanWrite())
	assert.True(t, Tenant{Status: TenantPending}.CanWrite())
	assert.False(t, Tenant{Status: TenantSuspended}.CanWrite())
	assert.False(t, Tenant{Status: TenantInactive}.CanWrite())
}

func TestErrors(t *testing.T) {
	cause := errors.New("boom")

	lookup := RuleLookupError{TenantID: "tnt_1", InterfaceID: "ifc_1"}
	assert.Contains(t, lookup.Error(), "does not belong to tenant tnt_1")
	assert.True(t, errors.Is(RuleLookupError{Err: cause}, cause))

	pathErr := PathEvaluationError{Path: "//[", Err: cause}
	assert.Contains(t, pathErr.Error(), "//[")
	assert.True(t, errors.Is(pathErr, cause))

	missing := MissingRequiredFieldError{Rule: "Document Number", Target: "doc_number"}
	assert.Contains(t, missing.Error(), "Document Number")

	var target StrategyNotFoundError
	assert.True(t, errors.As(error(StrategyNotFoundError{DocumentType: "EDI"}), &target))
	assert.Equal(t, "EDI", target.DocumentType)
}

func TestFailed(t *testing.T) {
	a := Failed("bad", []string{"w"})
	assert.Equal(t, StatusError, a.Status)
	assert.Empty(t, a.Fields)
	assert.NotNil(t, a.Fields)
}
