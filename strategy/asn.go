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
	"time"

	"github.com/blnkfinance/docflow/transform"
)

const (
	ASNDocumentType = "ASN"
	ASNPriority     = 100
)

// asnStatusCodes maps the two-digit ASN status codes to their names.
var asnStatusCodes = map[string]string{
	"01": "NEW",
	"02": "PROCESSING",
	"03": "COMPLETED",
	"04": "ERROR",
}

type asnStrategy struct {
	base
}

// NewASNStrategy handles advance shipping notices.
func NewASNStrategy() Strategy {
	return asnStrategy{base{
		name:     "asn",
		types:    []string{ASNDocumentType},
		priority: ASNPriority,
		overrides: transform.Table{
			"asn_date":     asnDate,
			"asn_time":     asnTime,
			"asn_number":   asnNumber,
			"asn_quantity": transform.FixedDecimal(3),
			"asn_status":   asnStatus,
		},
	}}
}

// asnDate converts a compact YYYYMMDD date to ISO.
func asnDate(raw string) transform.Result {
	t, err := time.Parse("20060102", strings.TrimSpace(raw))
	if err != nil {
		return transform.Fail(raw, fmt.Errorf("expected YYYYMMDD, got %q", raw))
	}
	return transform.Value(t.Format("2006-01-02"))
}

// asnTime converts a compact HHMMSS time to ISO.
func asnTime(raw string) transform.Result {
	t, err := time.Parse("150405", strings.TrimSpace(raw))
	if err != nil {
		return transform.Fail(raw, fmt.Errorf("expected HHMMSS, got %q", raw))
	}
	return transform.Value(t.Format("15:04:05"))
}

// asnNumber strips leading zeros from an integer-like string.
func asnNumber(raw string) transform.Result {
	value := strings.TrimSpace(raw)
	if value == "" || strings.Trim(value, "0123456789") != "" {
		return transform.Fail(raw, fmt.Errorf("expected digits, got %q", raw))
	}
	stripped := strings.TrimLeft(value, "0")
	if stripped == "" {
		return transform.Value("0")
	}
	return transform.Value(stripped)
}

// asnStatus maps a status code; unknown codes pass through unchanged.
func asnStatus(raw string) transform.Result {
	if status, ok := asnStatusCodes[strings.TrimSpace(raw)]; ok {
		return transform.Value(status)
	}
	return transform.Value(raw)
}
