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
	"regexp"

	"github.com/blnkfinance/docflow/model"
	"github.com/blnkfinance/docflow/transform"
)

const (
	XMLDocumentType = "XML"
	XMLPriority     = 50
)

var nonNumeric = regexp.MustCompile(`[^\d.-]`)

// usDateLayouts are tried before the generic ISO layouts.
var usDateLayouts = []string{"01/02/2006", "01-02-2006"}

type xmlStrategy struct {
	base
	fallback bool
}

// NewXMLStrategy handles generic XML documents. With fallback it accepts any
// non-empty document type so that specialised strategies only need to win on priority.
func NewXMLStrategy(fallback bool) Strategy {
	builtins := transform.Builtins()
	return xmlStrategy{
		base: base{
			name:     "xml",
			types:    []string{XMLDocumentType, "GENERIC"},
			priority: XMLPriority,
			overrides: transform.Table{
				transform.Date:   usDate(builtins[transform.Date]),
				transform.Number: cleanNumber(builtins[transform.Number]),
			},
		},
		fallback: fallback,
	}
}

func (s xmlStrategy) CanHandle(documentType string) bool {
	if s.fallback {
		return model.NormalizeDocumentType(documentType) != ""
	}
	return s.base.CanHandle(documentType)
}

// usDate normalises MM/DD/YYYY and MM-DD-YYYY before the ISO parser runs.
func usDate(next transform.Func) transform.Func {
	return func(raw string) transform.Result {
		if t, err := transform.ParseTime(raw, usDateLayouts); err == nil {
			return transform.Value(t.Format("2006-01-02"))
		}
		return next(raw)
	}
}

// cleanNumber drops currency symbols and grouping separators before parsing.
func cleanNumber(next transform.Func) transform.Func {
	return func(raw string) transform.Result {
		return next(nonNumeric.ReplaceAllString(raw, ""))
	}
}
