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
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/blnkfinance/docflow/internal/apierror"
	redlock "github.com/blnkfinance/docflow/internal/lock"
	"github.com/blnkfinance/docflow/model"
	"github.com/blnkfinance/docflow/transform"
)

const (
	ImportFormatJSON = "json"
	ImportFormatYAML = "yaml"

	importLockTimeout = 30 * time.Second
	importLockWait    = 10 * time.Second
)

const ruleFileSchemaJSON = `{
  "type": "object",
  "required": ["rules"],
  "properties": {
    "rules": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "source_path", "target_field"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "source_path": {"type": "string", "minLength": 1},
          "target_field": {"type": "string", "minLength": 1},
          "transformation": {"type": "string"},
          "required": {"type": "boolean"},
          "default_value": {"type": ["string", "null"]},
          "priority": {"type": "integer"},
          "table_name": {"type": "string"},
          "data_type": {"type": "string"},
          "is_attribute": {"type": "boolean"},
          "xsd_element": {"type": "string"},
          "validation_rule": {"type": "string"},
          "active": {"type": "boolean"}
        },
        "additionalProperties": false
      }
    }
  }
}`

var ruleFileSchema = jsonschema.MustCompileString("rules.schema.json", ruleFileSchemaJSON)

// RuleFile is the document accepted by ImportRules.
type RuleFile struct {
	Rules []RuleEntry `json:"rules"`
}

// RuleEntry is one rule of a RuleFile. Active defaults to true.
type RuleEntry struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	SourcePath     string  `json:"source_path"`
	TargetField    string  `json:"target_field"`
	Transformation string  `json:"transformation"`
	Required       bool    `json:"required"`
	DefaultValue   *string `json:"default_value"`
	Priority       int     `json:"priority"`
	TableName      string  `json:"table_name"`
	DataType       string  `json:"data_type"`
	IsAttribute    bool    `json:"is_attribute"`
	XsdElement     string  `json:"xsd_element"`
	ValidationRule string  `json:"validation_rule"`
	Active         *bool   `json:"active"`
}

func (e RuleEntry) rule() model.MappingRule {
	active := true
	if e.Active != nil {
		active = *e.Active
	}
	return model.MappingRule{
		Name:           e.Name,
		Description:    e.Description,
		SourcePath:     e.SourcePath,
		TargetField:    e.TargetField,
		Transformation: e.Transformation,
		Required:       e.Required,
		DefaultValue:   e.DefaultValue,
		Priority:       e.Priority,
		TableName:      e.TableName,
		DataType:       e.DataType,
		IsAttribute:    e.IsAttribute,
		XsdElement:     e.XsdElement,
		ValidationRule: e.ValidationRule,
		Active:         active,
	}
}

// ImportResult reports what an import stored. Warnings name rules whose
// transformation the interface's strategy does not know.
type ImportResult struct {
	Imported []model.MappingRule `json:"imported"`
	Warnings []string            `json:"warnings,omitempty"`
}

// ParseRuleFile decodes and validates a rule file. format is ImportFormatJSON or
// ImportFormatYAML; an empty format is inferred from the content.
func ParseRuleFile(content []byte, format string) (RuleFile, error) {
	var raw interface{}
	switch detectFormat(content, format) {
	case ImportFormatJSON:
		if err := json.Unmarshal(content, &raw); err != nil {
			return RuleFile{}, errors.Wrap(err, "invalid JSON rule file")
		}
	case ImportFormatYAML:
		if err := yaml.Unmarshal(content, &raw); err != nil {
			return RuleFile{}, errors.Wrap(err, "invalid YAML rule file")
		}
	default:
		return RuleFile{}, fmt.Errorf("unsupported rule file format %q", format)
	}

	normalized, err := json.Marshal(raw)
	if err != nil {
		return RuleFile{}, errors.Wrap(err, "rule file holds values that have no JSON form")
	}

	var doc interface{}
	decoder := json.NewDecoder(bytes.NewReader(normalized))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return RuleFile{}, err
	}
	if err := ruleFileSchema.Validate(doc); err != nil {
		return RuleFile{}, errors.Wrap(err, "rule file does not match the rule schema")
	}

	var file RuleFile
	if err := json.Unmarshal(normalized, &file); err != nil {
		return RuleFile{}, err
	}
	return file, nil
}

func detectFormat(content []byte, format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "yml":
		return ImportFormatYAML
	case "":
		trimmed := bytes.TrimSpace(content)
		if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
			return ImportFormatJSON
		}
		return ImportFormatYAML
	}
	return format
}

// ImportRules replaces the interface's rule set with the rules in content.
// Concurrent imports of the same interface are serialized through a Redis lock.
func (d *Docflow) ImportRules(ctx context.Context, tenantID, interfaceID string, content []byte, format string) (ImportResult, error) {
	file, err := ParseRuleFile(content, format)
	if err != nil {
		return ImportResult{}, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}

	iface, err := d.datasource.GetInterface(ctx, tenantID, interfaceID)
	if err != nil {
		return ImportResult{}, err
	}

	rules := make([]model.MappingRule, len(file.Rules))
	for i, entry := range file.Rules {
		rules[i] = entry.rule()
	}
	warnings := d.transformationWarnings(iface.DocumentType, rules)

	locker := redlock.NewLocker(d.redis, redlock.RuleSetKey(tenantID, interfaceID), model.GenerateUUIDWithSuffix("imp"))
	if err := locker.WaitLock(ctx, importLockTimeout, importLockWait); err != nil {
		return ImportResult{}, apierror.NewAPIError(apierror.ErrConflict, "another import of this interface is in progress", err)
	}
	defer func() {
		if err := locker.Unlock(ctx); err != nil {
			logrus.WithError(err).Error("failed to release rule import lock")
		}
	}()

	saved, err := d.rules.ReplaceRules(ctx, tenantID, interfaceID, rules)
	if err != nil {
		return ImportResult{}, err
	}

	logrus.WithFields(logrus.Fields{
		"tenant_id":    tenantID,
		"interface_id": interfaceID,
		"rules":        len(saved),
		"warnings":     len(warnings),
	}).Info("mapping rules imported")
	return ImportResult{Imported: saved, Warnings: warnings}, nil
}

func (d *Docflow) transformationWarnings(documentType string, rules []model.MappingRule) []string {
	var overrides transform.Table
	if s, err := d.registry.Resolve(documentType); err == nil {
		overrides = s.Transformations()
	}

	var warnings []string
	for _, rule := range rules {
		if rule.Transformation == "" || d.pipeline.Known(rule.Transformation, overrides) {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("rule %q: unknown transformation %q, values will pass through unchanged", rule.Name, rule.Transformation))
	}
	return warnings
}
