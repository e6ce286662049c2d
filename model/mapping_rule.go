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

// MappingRule maps one source document path to one output field.
type MappingRule struct {
	RuleID         string    `json:"rule_id" yaml:"rule_id"`
	TenantID       string    `json:"tenant_id" yaml:"tenant_id"`
	InterfaceID    string    `json:"interface_id" yaml:"interface_id"`
	Name           string    `json:"name" yaml:"name"`
	Description    string    `json:"description,omitempty" yaml:"description,omitempty"`
	SourcePath     string    `json:"source_path" yaml:"source_path"`
	TargetField    string    `json:"target_field" yaml:"target_field"`
	Transformation string    `json:"transformation,omitempty" yaml:"transformation,omitempty"`
	Required       bool      `json:"required" yaml:"required"`
	DefaultValue   *string   `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	Priority       int       `json:"priority" yaml:"priority"`
	TableName      string    `json:"table_name,omitempty" yaml:"table_name,omitempty"`
	DataType       string    `json:"data_type,omitempty" yaml:"data_type,omitempty"`
	IsAttribute    bool      `json:"is_attribute" yaml:"is_attribute"`
	XsdElement     string    `json:"xsd_element,omitempty" yaml:"xsd_element,omitempty"`
	ValidationRule string    `json:"validation_rule,omitempty" yaml:"validation_rule,omitempty"`
	Active         bool      `json:"active" yaml:"active"`
	CreatedAt      time.Time `json:"created_at" yaml:"-"`
}

// HasDefault reports whether the rule carries a usable default value.
func (r MappingRule) HasDefault() bool {
	return r.DefaultValue != nil && *r.DefaultValue != ""
}
