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

	"github.com/blnkfinance/docflow/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
// Every read that touches interfaces, rules or outcomes is filtered by tenant id.
type IDataSource interface {
	tenant      // Interface for tenant-related operations
	docIface    // Interface for document interface configuration
	mappingRule // Interface for mapping rule operations
	outcome     // Interface for processing outcome operations
}

// tenant defines methods for handling tenants.
type tenant interface {
	CreateTenant(ctx context.Context, tenant model.Tenant) (model.Tenant, error)                  // Creates a new tenant
	GetTenantByID(ctx context.Context, id string) (*model.Tenant, error)                          // Retrieves a tenant by ID
	GetTenantByCode(ctx context.Context, code string) (*model.Tenant, error)                      // Retrieves a tenant by its code
	GetAllTenants(ctx context.Context, limit, offset int) ([]model.Tenant, error)                 // Retrieves tenants page by page
	UpdateTenantStatus(ctx context.Context, id string, status model.TenantStatus) error           // Changes a tenant's status
}

// docIface defines methods for handling document interfaces.
type docIface interface {
	CreateInterface(ctx context.Context, iface model.Interface) (model.Interface, error)         // Creates a new interface
	GetInterface(ctx context.Context, tenantID, interfaceID string) (*model.Interface, error)    // Retrieves an interface owned by the tenant
	GetInterfacesByTenant(ctx context.Context, tenantID string) ([]model.Interface, error)       // Retrieves all interfaces of a tenant
}

// mappingRule defines methods for handling mapping rules.
type mappingRule interface {
	CreateMappingRule(ctx context.Context, rule model.MappingRule) (model.MappingRule, error)                                              // Creates a new rule
	GetActiveRules(ctx context.Context, tenantID, interfaceID string) ([]model.MappingRule, error)                                       // Retrieves active rules in priority order
	GetRulesByInterface(ctx context.Context, tenantID, interfaceID string) ([]model.MappingRule, error)                                  // Retrieves every rule of an interface
	DeleteMappingRule(ctx context.Context, tenantID, interfaceID, ruleID string) error                                                   // Deletes a rule of the interface
	ReplaceMappingRules(ctx context.Context, tenantID, interfaceID string, rules []model.MappingRule) ([]model.MappingRule, error)       // Atomically replaces an interface's rule set
}

// outcome defines methods for handling processing outcomes.
type outcome interface {
	CreateOutcome(ctx context.Context, outcome model.ProcessingOutcome) (model.ProcessingOutcome, error)                 // Records a new PENDING outcome
	MarkOutcomeProcessing(ctx context.Context, outcomeID string) error                                                    // Moves an outcome from PENDING to PROCESSING
	CompleteOutcome(ctx context.Context, outcome *model.ProcessingOutcome) error                                          // Moves an outcome from PROCESSING to a terminal state
	GetOutcome(ctx context.Context, tenantID, outcomeID string) (*model.ProcessingOutcome, error)                        // Retrieves an outcome owned by the tenant
	GetOutcomesByTenant(ctx context.Context, tenantID string, limit, offset int) ([]model.ProcessingOutcome, error)     // Retrieves a tenant's outcomes, newest first
}
