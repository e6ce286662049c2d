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
package mocks

import (
	"context"

	"github.com/blnkfinance/docflow/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Tenant methods

func (m *MockDataSource) CreateTenant(ctx context.Context, tenant model.Tenant) (model.Tenant, error) {
	args := m.Called(ctx, tenant)
	return args.Get(0).(model.Tenant), args.Error(1)
}

func (m *MockDataSource) GetTenantByID(ctx context.Context, id string) (*model.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tenant), args.Error(1)
}

func (m *MockDataSource) GetTenantByCode(ctx context.Context, code string) (*model.Tenant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tenant), args.Error(1)
}

func (m *MockDataSource) GetAllTenants(ctx context.Context, limit, offset int) ([]model.Tenant, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]model.Tenant), args.Error(1)
}

func (m *MockDataSource) UpdateTenantStatus(ctx context.Context, id string, status model.TenantStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// Interface methods

func (m *MockDataSource) CreateInterface(ctx context.Context, iface model.Interface) (model.Interface, error) {
	args := m.Called(ctx, iface)
	return args.Get(0).(model.Interface), args.Error(1)
}

func (m *MockDataSource) GetInterface(ctx context.Context, tenantID, interfaceID string) (*model.Interface, error) {
	args := m.Called(ctx, tenantID, interfaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Interface), args.Error(1)
}

func (m *MockDataSource) GetInterfacesByTenant(ctx context.Context, tenantID string) ([]model.Interface, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]model.Interface), args.Error(1)
}

// Mapping rule methods

func (m *MockDataSource) CreateMappingRule(ctx context.Context, rule model.MappingRule) (model.MappingRule, error) {
	args := m.Called(ctx, rule)
	return args.Get(0).(model.MappingRule), args.Error(1)
}

func (m *MockDataSource) GetActiveRules(ctx context.Context, tenantID, interfaceID string) ([]model.MappingRule, error) {
	args := m.Called(ctx, tenantID, interfaceID)
	return args.Get(0).([]model.MappingRule), args.Error(1)
}

func (m *MockDataSource) GetRulesByInterface(ctx context.Context, tenantID, interfaceID string) ([]model.MappingRule, error) {
	args := m.Called(ctx, tenantID, interfaceID)
	return args.Get(0).([]model.MappingRule), args.Error(1)
}

func (m *MockDataSource) DeleteMappingRule(ctx context.Context, tenantID, interfaceID, ruleID string) error {
	args := m.Called(ctx, tenantID, interfaceID, ruleID)
	return args.Error(0)
}

func (m *MockDataSource) ReplaceMappingRules(ctx context.Context, tenantID, interfaceID string, rules []model.MappingRule) ([]model.MappingRule, error) {
	args := m.Called(ctx, tenantID, interfaceID, rules)
	return args.Get(0).([]model.MappingRule), args.Error(1)
}

// Outcome methods

func (m *MockDataSource) CreateOutcome(ctx context.Context, outcome model.ProcessingOutcome) (model.ProcessingOutcome, error) {
	args := m.Called(ctx, outcome)
	return args.Get(0).(model.ProcessingOutcome), args.Error(1)
}

func (m *MockDataSource) MarkOutcomeProcessing(ctx context.Context, outcomeID string) error {
	args := m.Called(ctx, outcomeID)
	return args.Error(0)
}

func (m *MockDataSource) CompleteOutcome(ctx context.Context, outcome *model.ProcessingOutcome) error {
	args := m.Called(ctx, outcome)
	return args.Error(0)
}

func (m *MockDataSource) GetOutcome(ctx context.Context, tenantID, outcomeID string) (*model.ProcessingOutcome, error) {
	args := m.Called(ctx, tenantID, outcomeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProcessingOutcome), args.Error(1)
}

func (m *MockDataSource) GetOutcomesByTenant(ctx context.Context, tenantID string, limit, offset int) ([]model.ProcessingOutcome, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]model.ProcessingOutcome), args.Error(1)
}
