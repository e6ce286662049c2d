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

// Package xpath evaluates rule source paths against parsed XML documents.
package xpath

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/blnkfinance/docflow/model"
)

// Extractor compiles path expressions once and reuses them across documents.
// It is safe for concurrent use.
type Extractor struct {
	compiled sync.Map // map[string]*xpath.Expr
}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Parse reads an XML document into a queryable tree.
func Parse(r io.Reader) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse xml document: %w", err)
	}
	return doc, nil
}

// ParseBytes is Parse for an in-memory document.
func ParseBytes(content []byte) (*xmlquery.Node, error) {
	return Parse(bytes.NewReader(content))
}

// Compile validates a path expression and caches the compiled form.
func (e *Extractor) Compile(path string) (*xpath.Expr, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, model.PathEvaluationError{Path: path, Err: errors.New("empty expression")}
	}
	if cached, ok := e.compiled.Load(path); ok {
		return cached.(*xpath.Expr), nil
	}
	expr, err := xpath.Compile(path)
	if err != nil {
		return nil, model.PathEvaluationError{Path: path, Err: err}
	}
	actual, _ := e.compiled.LoadOrStore(path, expr)
	return actual.(*xpath.Expr), nil
}

// Extract returns the text of the first node matched by path. ok is false when
// nothing matches; an error is returned only for a malformed expression.
func (e *Extractor) Extract(path string, doc *xmlquery.Node) (value string, ok bool, err error) {
	if doc == nil {
		return "", false, nil
	}
	expr, err := e.Compile(path)
	if err != nil {
		return "", false, err
	}

	defer func() {
		if r := recover(); r != nil {
			value, ok = "", false
			err = model.PathEvaluationError{Path: path, Err: fmt.Errorf("%v", r)}
		}
	}()

	switch result := expr.Evaluate(xmlquery.CreateXPathNavigator(doc)).(type) {
	case *xpath.NodeIterator:
		if !result.MoveNext() {
			return "", false, nil
		}
		return result.Current().Value(), true, nil
	case string:
		return result, result != "", nil
	case float64:
		return strconv.FormatFloat(result, 'f', -1, 64), true, nil
	case bool:
		return strconv.FormatBool(result), true, nil
	default:
		return "", false, nil
	}
}

// RootElement returns the document's root element, or nil for an empty document.
func RootElement(doc *xmlquery.Node) *xmlquery.Node {
	if doc == nil {
		return nil
	}
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}
