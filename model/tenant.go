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

import "time"

type TenantStatus string

const (
	TenantActive    TenantStatus = "ACTIVE"
	TenantInactive  TenantStatus = "INACTIVE"
	TenantPending   TenantStatus = "PENDING"
	TenantSuspended TenantStatus = "SUSPENDED"
)

// Tenant is an isolated customer. Every interface, rule and outcome is scoped to one.
type Tenant struct {
	TenantID  string       `json:"tenant_id"`
	Name      string       `json:"name"`
	Code      string       `json:"code"`
	Status    TenantStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// CanWrite reports whether the tenant may submit documents or change its rules.
// Suspension keeps the data but blocks writes.
func (t Tenant) CanWrite() bool {
	return t.Status == TenantActive || t.Status == TenantPending
}

// Interface is one configured document type a tenant can submit, e.g. "ASN".
type Interface struct {
	InterfaceID  string    `json:"interface_id"`
	TenantID     string    `json:"tenant_id"`
	Name         string    `json:"name"`
	DocumentType string    `json:"document_type"`
	SchemaPath   string    `json:"schema_path"`
	RootElement  string    `json:"root_element"`
	Namespace    string    `json:"namespace"`
	Description  string    `json:"description"`
	Active       bool      `json:"active"`
	Priority     int       `json:"priority"`
	CreatedAt    time.Time `json:"created_at"`
}
