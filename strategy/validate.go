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

package strategy

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/blnkfinance/docflow/internal/xpath"
	"github.com/blnkfinance/docflow/model"
)

// ValidateStructure checks the root element and its namespace against the
// interface configuration. Either check is skipped when the interface leaves it unset.
func ValidateStructure(doc *xmlquery.Node, iface model.Interface) []string {
	root := xpath.RootElement(doc)
	if root == nil {
		return []string{"document has no root element"}
	}

	var problems []string
	if iface.RootElement != "" && root.Data != iface.RootElement {
		problems = append(problems, fmt.Sprintf("root element %s does not match expected %s", root.Data, iface.RootElement))
	}
	if iface.Namespace != "" && root.NamespaceURI != iface.Namespace {
		problems = append(problems, fmt.Sprintf("namespace %q does not match expected %q", root.NamespaceURI, iface.Namespace))
	}
	return problems
}

// validateVersion requires a version attribute on the root element.
func validateVersion(doc *xmlquery.Node) []string {
	root := xpath.RootElement(doc)
	if root == nil || strings.TrimSpace(root.SelectAttr("version")) != "" {
		return nil
	}
	return []string{"root element is missing the version attribute"}
}

// requiredElements describes the elements a business document must carry.
type requiredElements struct {
	header     []string
	lineItem   string
	lineFields []string
}

func (r requiredElements) check(doc *xmlquery.Node) []string {
	var problems []string
	for _, name := range r.header {
		if !hasText(xmlquery.FindOne(doc, "//"+name)) {
			problems = append(problems, fmt.Sprintf("missing required element %s", name))
		}
	}

	if r.lineItem == "" {
		return problems
	}
	items := xmlquery.Find(doc, "//"+r.lineItem)
	if len(items) == 0 {
		return append(problems, fmt.Sprintf("at least one %s is required", r.lineItem))
	}
	for i, item := range items {
		for _, field := range r.lineFields {
			if !hasText(xmlquery.FindOne(item, ".//"+field)) {
				problems = append(problems, fmt.Sprintf("%s %d is missing required element %s", r.lineItem, i+1, field))
			}
		}
	}
	return problems
}

func hasText(n *xmlquery.Node) bool {
	return n != nil && strings.TrimSpace(n.InnerText()) != ""
}
