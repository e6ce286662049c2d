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

package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/blnkfinance/docflow/internal/apierror"
	"github.com/blnkfinance/docflow/model"
)

const ruleColumns = `r.rule_id, r.tenant_id, r.interface_id, r.name, r.description, r.source_path, r.target_field,
	r.transformation, r.required, r.default_value, r.priority, r.table_name, r.data_type, r.is_attribute,
	r.xsd_element, r.validation_rule, r.active, r.created_at`

const insertRule = `INSERT INTO docflow.mapping_rules (rule_id, tenant_id, interface_id, name, description, source_path,
	target_field, transformation, required, default_value, priority, table_name, data_type, is_attribute, xsd_element,
	validation_rule, active, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMappingRule(ctx context.Context, conn execer, rule model.MappingRule) error {
	_, err := conn.ExecContext(ctx, insertRule,
		rule.RuleID, rule.TenantID, rule.InterfaceID, rule.Name, rule.Description, rule.SourcePath,
		rule.TargetField, rule.Transformation, rule.Required, rule.DefaultValue, rule.Priority, rule.TableName,
		rule.DataType, rule.IsAttribute, rule.XsdElement, rule.ValidationRule, rule.Active, rule.CreatedAt,
	)
	return err
}

func (d Datasource) CreateMappingRule(ctx context.Context, rule model.MappingRule) (model.MappingRule, error) {
	ctx, span := otel.Tracer("Mapping rule").Start(ctx, "Saving mapping rule to db")
	defer span.End()

	if err := insertMappingRule(ctx, d.Conn, rule); err != nil {
		span.RecordError(err)
		if isUniqueViolation(err) {
			return rule, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("mapping rule '%s' already exists", rule.Name), err)
		}
		return rule, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create mapping rule", err)
	}

	return rule, nil
}

// GetActiveRules returns the active rules of an interface ordered by priority then name.
// The join on interfaces keeps a rule from leaking across tenants even if its own
// tenant_id was written incorrectly.
func (d Datasource) GetActiveRules(ctx context.Context, tenantID, interfaceID string) ([]model.MappingRule, error) {
	ctx, span := otel.Tracer("Mapping rule").Start(ctx, "Fetching active mapping rules")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM docflow.mapping_rules r
		JOIN docflow.interfaces i ON i.interface_id = r.interface_id
		WHERE r.interface_id = $1 AND r.tenant_id = $2 AND i.tenant_id = $2 AND r.active = TRUE
		ORDER BY r.priority, r.name
	`, interfaceID, tenantID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve mapping rules", err)
	}
	defer rows.Close()

	return scanRules(rows)
}

func (d Datasource) GetRulesByInterface(ctx context.Context, tenantID, interfaceID string) ([]model.MappingRule, error) {
	ctx, span := otel.Tracer("Mapping rule").Start(ctx, "Fetching mapping rules by interface")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM docflow.mapping_rules r
		WHERE r.interface_id = $1 AND r.tenant_id = $2
		ORDER BY r.priority, r.name
	`, interfaceID, tenantID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve mapping rules", err)
	}
	defer rows.Close()

	return scanRules(rows)
}

func scanRules(rows *sql.Rows) ([]model.MappingRule, error) {
	var rules []model.MappingRule
	for rows.Next() {
		rule := model.MappingRule{}
		err := rows.Scan(&rule.RuleID, &rule.TenantID, &rule.InterfaceID, &rule.Name, &rule.Description,
			&rule.SourcePath, &rule.TargetField, &rule.Transformation, &rule.Required, &rule.DefaultValue,
			&rule.Priority, &rule.TableName, &rule.DataType, &rule.IsAttribute, &rule.XsdElement,
			&rule.ValidationRule, &rule.Active, &rule.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan mapping rule data", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over mapping rules", err)
	}
	return rules, nil
}

// DeleteMappingRule removes a rule only when it belongs to the given tenant and interface.
func (d Datasource) DeleteMappingRule(ctx context.Context, tenantID, interfaceID, ruleID string) error {
	ctx, span := otel.Tracer("Mapping rule").Start(ctx, "Deleting mapping rule")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `DELETE FROM docflow.mapping_rules WHERE rule_id = $1 AND tenant_id = $2 AND interface_id = $3`, ruleID, tenantID, interfaceID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete mapping rule", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Mapping rule with ID '%s' not found", ruleID), nil)
	}

	return nil
}

// ReplaceMappingRules swaps an interface's whole rule set inside one transaction.
// Either every rule is written or the previous set is left untouched.
func (d Datasource) ReplaceMappingRules(ctx context.Context, tenantID, interfaceID string, rules []model.MappingRule) ([]model.MappingRule, error) {
	ctx, span := otel.Tracer("Mapping rule").Start(ctx, "Replacing mapping rules")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM docflow.mapping_rules WHERE interface_id = $1 AND tenant_id = $2`, interfaceID, tenantID); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to clear mapping rules", err)
	}

	for _, rule := range rules {
		if err := insertMappingRule(ctx, tx, rule); err != nil {
			span.RecordError(err)
			if isUniqueViolation(err) {
				return nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("mapping rule '%s' already exists", rule.Name), err)
			}
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, fmt.Sprintf("Failed to save mapping rule '%s'", rule.Name), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit mapping rules", err)
	}

	return rules, nil
}
