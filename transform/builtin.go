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

package transform

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	Uppercase = "uppercase"
	Lowercase = "lowercase"
	Trim      = "trim"
	Date      = "date"
	Time      = "time"
	DateTime  = "datetime"
	Number    = "number"
	Currency  = "currency"
	Integer   = "integer"
)

const (
	isoDate     = "2006-01-02"
	isoTime     = "15:04:05"
	isoDateTime = "2006-01-02T15:04:05"
)

var (
	dateLayouts = []string{
		time.RFC3339Nano,
		isoDateTime,
		"2006-01-02 15:04:05",
		isoDate,
		"2006/01/02",
	}
	timeLayouts = []string{
		time.RFC3339Nano,
		isoDateTime,
		"2006-01-02 15:04:05",
		isoTime,
		"15:04",
	}
	dateTimeLayouts = []string{
		time.RFC3339Nano,
		isoDateTime,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		isoDate,
	}
)

// Builtins returns the generic transformation table shared by every strategy.
func Builtins() Table {
	return Table{
		Uppercase: func(raw string) Result {
			return Value(cases.Upper(language.Und).String(raw))
		},
		Lowercase: func(raw string) Result {
			return Value(cases.Lower(language.Und).String(raw))
		},
		Trim: func(raw string) Result {
			return Value(strings.TrimSpace(raw))
		},
		Date:     reformatTime(dateLayouts, isoDate),
		Time:     reformatTime(timeLayouts, isoTime),
		DateTime: reformatTime(dateTimeLayouts, isoDateTime),
		Number:   FixedDecimal(2),
		Currency: FixedDecimal(2),
		Integer:  truncateInteger,
	}
}

// ParseTime tries each layout in order and returns the first successful parse.
func ParseTime(raw string, layouts []string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date/time value %q", raw)
}

func reformatTime(layouts []string, output string) Func {
	return func(raw string) Result {
		t, err := ParseTime(raw, layouts)
		if err != nil {
			return Fail(raw, err)
		}
		return Value(t.Format(output))
	}
}

// FixedDecimal renders a decimal value with exactly places fraction digits.
func FixedDecimal(places int32) Func {
	return func(raw string) Result {
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return Fail(raw, fmt.Errorf("invalid number %q", raw))
		}
		return Value(d.StringFixed(places))
	}
}

func truncateInteger(raw string) Result {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Fail(raw, fmt.Errorf("invalid integer %q", raw))
	}
	return Value(d.Truncate(0).String())
}
