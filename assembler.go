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
	"context"
	"errors"
	"fmt"

	"github.com/antchfx/xmlquery"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/blnkfinance/docflow/internal/tenant"
	"github.com/blnkfinance/docflow/internal/xpath"
	"github.com/blnkfinance/docflow/model"
	"github.com/blnkfinance/docflow/strategy"
	"github.com/blnkfinance/docflow/transform"
)

// RuleSource supplies the ordered active rules of an interface.
type RuleSource interface {
	ActiveRules(ctx context.Context, tenantID, interfaceID string) ([]model.MappingRule, error)
}

// Assembler evaluates an interface's rules against one document. It holds no
// per-document state and is safe for concurrent use.
type Assembler struct {
	rules     RuleSource
	extractor *xpath.Extractor
	pipeline  *transform.Pipeline
}

func NewAssembler(rules RuleSource, extractor *xpath.Extractor, pipeline *transform.Pipeline) *Assembler {
	return &Assembler{rules: rules, extractor: extractor, pipeline: pipeline}
}

// Assemble builds the field map for doc. A required rule that ends without a
// value fails the whole document and discards every field gathered so far.
// A context scoped to another tenant fails before any rule is read.
func (a *Assembler) Assemble(ctx context.Context, tenantID, interfaceID string, doc *xmlquery.Node, s strategy.Strategy) model.Assembly {
	ctx, span := otel.Tracer("docflow.assembler").Start(ctx, "Assembling fields")
	defer span.End()

	log := logrus.WithFields(logrus.Fields{"tenant_id": tenantID, "interface_id": interfaceID})

	if scoped, ok := tenant.FromContext(ctx); ok && scoped != tenantID {
		err := model.TenantScopeError{Scoped: scoped, Requested: tenantID}
		span.RecordError(err)
		log.WithField("scoped_tenant_id", scoped).Error(err.Error())
		return model.Failed(err.Error(), nil)
	}

	rules, err := a.rules.ActiveRules(ctx, tenantID, interfaceID)
	if err != nil {
		span.RecordError(err)
		var lookupErr model.RuleLookupError
		if !errors.As(err, &lookupErr) {
			err = model.RuleLookupError{TenantID: tenantID, InterfaceID: interfaceID, Err: err}
		}
		return model.Failed(err.Error(), nil)
	}

	var overrides transform.Table
	if s != nil {
		overrides = s.Transformations()
	}

	fields := make(map[string]string, len(rules))
	var warnings []string
	warn := func(rule model.MappingRule, msg string) {
		warnings = append(warnings, fmt.Sprintf("rule %q: %s", rule.Name, msg))
		log.WithField("rule", rule.Name).Warn(msg)
	}

	for _, rule := range rules {
		raw, _, err := a.extractor.Extract(rule.SourcePath, doc)
		if err != nil {
			if rule.Required {
				span.RecordError(err)
				return model.Failed(fmt.Sprintf("rule %q: %v", rule.Name, err), warnings)
			}
			warn(rule, err.Error()+"; rule skipped")
			continue
		}

		value := raw
		if value == "" && rule.HasDefault() {
			value = *rule.DefaultValue
		}

		if value != "" && rule.Transformation != "" {
			result := a.pipeline.Apply(value, rule.Transformation, overrides)
			if result.HasWarning() {
				warn(rule, result.Warning)
			}
			value = result.Value
		}

		// Whitespace is a value; only an empty result counts as missing.
		if value == "" {
			if rule.Required {
				missing := model.MissingRequiredFieldError{Rule: rule.Name, Target: rule.TargetField}
				return model.Failed(missing.Error(), warnings)
			}
			continue
		}

		fields[rule.TargetField] = value
	}

	return model.Assembly{
		Fields:   fields,
		Status:   model.StatusSuccess,
		Warnings: warnings,
	}
}
