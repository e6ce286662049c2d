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

import "github.com/blnkfinance/docflow/model"

type CreateTenant struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type UpdateTenantStatus struct {
	Status model.TenantStatus `json:"status"`
}

type CreateInterface struct {
	Name         string `json:"name"`
	DocumentType string `json:"document_type"`
	SchemaPath   string `json:"schema_path"`
	RootElement  string `json:"root_element"`
	Namespace    string `json:"namespace"`
	Description  string `json:"description"`
	Active       *bool  `json:"active"`
	Priority     int    `json:"priority"`
}

type CreateMappingRule struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	SourcePath     string  `json:"source_path"`
	TargetField    string  `json:"target_field"`
	Transformation string  `json:"transformation"`
	Required       bool    `json:"required"`
	DefaultValue   *string `json:"default_value"`
	Priority       int     `json:"priority"`
	TableName      string  `json:"table_name"`
	DataType       string  `json:"data_type"`
	IsAttribute    bool    `json:"is_attribute"`
	XsdElement     string  `json:"xsd_element"`
	ValidationRule string  `json:"validation_rule"`
	Active         *bool   `json:"active"`
}

// ProcessDocument carries the raw XML in Content.
type ProcessDocument struct {
	InterfaceID string `json:"interface_id"`
	FileName    string `json:"file_name"`
	Content     string `json:"content"`
}

type ProcessBatch struct {
	Documents []ProcessDocument `json:"documents"`
}
