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

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUIDWithSuffix generates a UUID and prefixes it with the provided module name.
// e.g. GenerateUUIDWithSuffix("rul") returns "rul_<uuid>".
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%s", module, id.String())
}

// NormalizeDocumentType upper-cases and trims a document type so lookups are case-insensitive.
func NormalizeDocumentType(documentType string) string {
	return strings.ToUpper(strings.TrimSpace(documentType))
}

// SortRules orders rules ascending by priority. Rules sharing a priority keep a
// stable order by name so repeated assemblies evaluate them identically.
func SortRules(rules []MappingRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].Name < rules[j].Name
	})
}

// DuplicateTargets returns the target fields claimed by more than one active rule,
// in the order the duplicates are first seen.
func DuplicateTargets(rules []MappingRule) []string {
	seen := make(map[string]int)
	var duplicates []string
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		seen[rule.TargetField]++
		if seen[rule.TargetField] == 2 {
			duplicates = append(duplicates, rule.TargetField)
		}
	}
	return duplicates
}
