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

// Package strategy holds the per-document-type processors and the registry
// that picks one for an interface.
package strategy

import (
	"github.com/antchfx/xmlquery"

	"github.com/blnkfinance/docflow/model"
	"github.com/blnkfinance/docflow/transform"
)

// Strategy processes one or more document types.
type Strategy interface {
	// Name identifies the strategy in logs and outcomes.
	Name() string
	// DocumentTypes lists the types this strategy declares up front. They seed
	// the registry's lookup table.
	DocumentTypes() []string
	CanHandle(documentType string) bool
	// Priority decides between strategies that can handle the same type. Higher wins.
	Priority() int
	// Transformations returns the overrides layered over the built-in table.
	Transformations() transform.Table
	// Validate returns the problems that make the document unprocessable.
	Validate(doc *xmlquery.Node, iface model.Interface) []string
}

// base carries the fields every built-in strategy shares.
type base struct {
	name      string
	types     []string
	priority  int
	overrides transform.Table
}

func (b base) Name() string {
	return b.name
}

func (b base) DocumentTypes() []string {
	return append([]string(nil), b.types...)
}

func (b base) Priority() int {
	return b.priority
}

func (b base) Transformations() transform.Table {
	return b.overrides
}

func (b base) CanHandle(documentType string) bool {
	normalized := model.NormalizeDocumentType(documentType)
	for _, t := range b.types {
		if t == normalized {
			return true
		}
	}
	return false
}

func (b base) Validate(doc *xmlquery.Node, iface model.Interface) []string {
	return ValidateStructure(doc, iface)
}
