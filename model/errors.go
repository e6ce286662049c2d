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

import "fmt"

// StrategyNotFoundError is returned when no registered strategy handles a document type.
type StrategyNotFoundError struct {
	DocumentType string
}

func (e StrategyNotFoundError) Error() string {
	return fmt.Sprintf("no processing strategy found for document type %q", e.DocumentType)
}

// RuleLookupError is returned when an interface does not exist for the requesting tenant.
type RuleLookupError struct {
	TenantID    string
	InterfaceID string
	Err         error
}

func (e RuleLookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rule lookup failed for interface %s of tenant %s: %v", e.InterfaceID, e.TenantID, e.Err)
	}
	return fmt.Sprintf("interface %s does not belong to tenant %s", e.InterfaceID, e.TenantID)
}

func (e RuleLookupError) Unwrap() error {
	return e.Err
}

// PathEvaluationError is returned for a malformed path expression. A path that
// simply matches nothing is not an error.
type PathEvaluationError struct {
	Path string
	Err  error
}

func (e PathEvaluationError) Error() string {
	return fmt.Sprintf("invalid path expression %q: %v", e.Path, e.Err)
}

func (e PathEvaluationError) Unwrap() error {
	return e.Err
}

// MissingRequiredFieldError is returned when a required rule ends without a value.
type MissingRequiredFieldError struct {
	Rule   string
	Target string
}

func (e MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("required field missing: rule %q (target %s) produced no value", e.Rule, e.Target)
}

// TenantScopeError is returned when work scoped to one tenant asks for another tenant's data.
type TenantScopeError struct {
	Scoped    string
	Requested string
}

func (e TenantScopeError) Error() string {
	return fmt.Sprintf("tenant scope %s cannot read data of tenant %s", e.Scoped, e.Requested)
}

// SchemaNotFoundError is returned when neither a tenant override nor a default schema exists.
type SchemaNotFoundError struct {
	Path string
}

func (e SchemaNotFoundError) Error() string {
	return fmt.Sprintf("schema not found: %s", e.Path)
}

// SchemaParseError is returned for malformed schema content.
type SchemaParseError struct {
	Path string
	Err  error
}

func (e SchemaParseError) Error() string {
	return fmt.Sprintf("failed to parse schema %s: %v", e.Path, e.Err)
}

func (e SchemaParseError) Unwrap() error {
	return e.Err
}
