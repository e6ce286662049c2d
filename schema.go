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
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/pkg/errors"

	"github.com/blnkfinance/docflow/model"
)

// SchemaIntrospector lists the element paths declared by an XSD so rule authors
// can pick source paths. It never touches document processing.
type SchemaIntrospector struct {
	dir string
}

// SchemaInfo is the top-level declaration of a schema.
type SchemaInfo struct {
	RootElement string `json:"root_element"`
	Namespace   string `json:"namespace"`
}

func NewSchemaIntrospector(dir string) *SchemaIntrospector {
	return &SchemaIntrospector{dir: dir}
}

// Structure returns every element declaration of the schema in document order.
// A tenant override under clients/<tenantID>/ wins over the shared schema.
func (s *SchemaIntrospector) Structure(schemaPath, tenantID string) ([]model.ElementInfo, error) {
	root, err := s.load(schemaPath, tenantID)
	if err != nil {
		return nil, err
	}

	elements := []model.ElementInfo{}
	walkSchema(root, "", &elements)
	return elements, nil
}

// Describe returns the first top-level element and the target namespace of the schema.
func (s *SchemaIntrospector) Describe(schemaPath, tenantID string) (SchemaInfo, error) {
	root, err := s.load(schemaPath, tenantID)
	if err != nil {
		return SchemaInfo{}, err
	}

	info := SchemaInfo{Namespace: root.SelectAttr("targetNamespace")}
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if isDeclaration(n) {
			info.RootElement = declarationName(n)
			break
		}
	}
	return info, nil
}

func (s *SchemaIntrospector) load(schemaPath, tenantID string) (*xmlquery.Node, error) {
	path, err := s.resolve(schemaPath, tenantID)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading schema %s", schemaPath)
	}

	doc, err := xmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, model.SchemaParseError{Path: schemaPath, Err: err}
	}

	root := doc.SelectElement("*")
	if root == nil || root.Data != "schema" {
		return nil, model.SchemaParseError{Path: schemaPath, Err: errors.New("root element is not a schema")}
	}
	return root, nil
}

// resolve picks the tenant override when it exists, then the shared schema.
// Paths that leave the schema directory are treated as missing.
func (s *SchemaIntrospector) resolve(schemaPath, tenantID string) (string, error) {
	schemaPath = strings.TrimSpace(schemaPath)
	if schemaPath == "" {
		return "", model.SchemaNotFoundError{Path: schemaPath}
	}

	base, err := filepath.Abs(s.dir)
	if err != nil {
		return "", errors.Wrap(err, "resolving schema directory")
	}

	var candidates []string
	if tenantID != "" && !strings.ContainsAny(tenantID, `/\`) && tenantID != ".." {
		candidates = append(candidates, filepath.Join(base, "clients", tenantID, schemaPath))
	}
	candidates = append(candidates, filepath.Join(base, schemaPath))

	for _, candidate := range candidates {
		if !within(base, candidate) {
			return "", model.SchemaNotFoundError{Path: schemaPath}
		}
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", model.SchemaNotFoundError{Path: schemaPath}
}

func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func walkSchema(n *xmlquery.Node, parent string, out *[]model.ElementInfo) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode || child.Data == "annotation" {
			continue
		}
		if !isDeclaration(child) {
			walkSchema(child, parent, out)
			continue
		}

		name := declarationName(child)
		path := name
		if parent != "" {
			path = parent + "." + name
		}
		*out = append(*out, model.ElementInfo{Name: name, Type: declarationType(child), Path: path})
		walkSchema(child, path, out)
	}
}

func isDeclaration(n *xmlquery.Node) bool {
	return n.Type == xmlquery.ElementNode && n.Data == "element" && declarationName(n) != ""
}

func declarationName(n *xmlquery.Node) string {
	if name := n.SelectAttr("name"); name != "" {
		return name
	}
	return localName(n.SelectAttr("ref"))
}

func declarationType(n *xmlquery.Node) string {
	if t := n.SelectAttr("type"); t != "" {
		return t
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && child.Data == "complexType" {
			return "complex"
		}
	}
	return ""
}

func localName(qualified string) string {
	if i := strings.LastIndex(qualified, ":"); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
