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
	"strings"
	"sync"
	"sync/atomic"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/blnkfinance/docflow/database"
	"github.com/blnkfinance/docflow/internal/apierror"
	"github.com/blnkfinance/docflow/internal/cache"
	"github.com/blnkfinance/docflow/model"
)

// ruleSnapshot is the cached, already sorted rule set of one interface at one version.
type ruleSnapshot struct {
	Rules    []model.MappingRule
	Version  int64
	LoadedAt time.Time
}

// RuleStore serves active rules from an immutable per-interface snapshot. Writers
// replace whole snapshots, so a reader never sees a rule set mid-update.
//
// Every write bumps a per-interface version counter in Redis. Snapshots are
// tagged with the version they were loaded under and ignored once it moves, so
// every process sharing the Redis instance drops a replaced rule set on its next read.
type RuleStore struct {
	datasource database.IDataSource
	cache      cache.Cache
	versions   redis.UniversalClient
	ttl        time.Duration

	mu        sync.Mutex // serialises snapshot replacement
	snapshots atomic.Pointer[map[string]ruleSnapshot]
}

func NewRuleStore(ds database.IDataSource, c cache.Cache, versions redis.UniversalClient, ttl time.Duration) *RuleStore {
	s := &RuleStore{datasource: ds, cache: c, versions: versions, ttl: ttl}
	empty := map[string]ruleSnapshot{}
	s.snapshots.Store(&empty)
	return s
}

func ruleKey(tenantID, interfaceID string) string {
	return fmt.Sprintf("docflow:rules:%s:%s", tenantID, interfaceID)
}

func ruleVersionKey(tenantID, interfaceID string) string {
	return fmt.Sprintf("docflow:rules:version:%s:%s", tenantID, interfaceID)
}

func ruleSnapshotKey(key string, version int64) string {
	return fmt.Sprintf("%s:v%d", key, version)
}

// version reads the interface's current rule set version. A missing counter is version 0.
func (s *RuleStore) version(ctx context.Context, tenantID, interfaceID string) (int64, error) {
	if s.versions == nil {
		return 0, nil
	}
	v, err := s.versions.Get(ctx, ruleVersionKey(tenantID, interfaceID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// ActiveRules returns a copy of the interface's active rules in evaluation order.
// It fails with model.RuleLookupError when the interface is not owned by tenantID.
func (s *RuleStore) ActiveRules(ctx context.Context, tenantID, interfaceID string) ([]model.MappingRule, error) {
	ctx, span := otel.Tracer("docflow.rules").Start(ctx, "Loading active rules")
	defer span.End()

	if tenantID == "" || interfaceID == "" {
		return nil, model.RuleLookupError{TenantID: tenantID, InterfaceID: interfaceID, Err: errors.New("tenant id and interface id are required")}
	}

	key := ruleKey(tenantID, interfaceID)
	version, err := s.version(ctx, tenantID, interfaceID)
	if err != nil {
		// snapshots cannot be validated without a version
		logrus.WithError(err).WithField("key", key).Warn("rule version read failed, bypassing snapshot cache")
		rules, err := s.load(ctx, tenantID, interfaceID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		return rules, nil
	}

	if snap, ok := s.local(key, version); ok {
		return cloneRules(snap.Rules), nil
	}

	sharedKey := ruleSnapshotKey(key, version)
	if s.cache != nil {
		var snap ruleSnapshot
		found, err := s.cache.Get(ctx, sharedKey, &snap)
		if err != nil {
			logrus.WithError(err).WithField("key", sharedKey).Warn("rule cache read failed, falling back to database")
		} else if found && snap.Version == version {
			s.publish(key, snap)
			return cloneRules(snap.Rules), nil
		}
	}

	rules, err := s.load(ctx, tenantID, interfaceID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	snap := ruleSnapshot{Rules: rules, Version: version, LoadedAt: time.Now()}
	s.publish(key, snap)
	if s.cache != nil {
		if err := s.cache.Set(ctx, sharedKey, snap, s.ttl); err != nil {
			logrus.WithError(err).WithField("key", sharedKey).Warn("failed to cache rule snapshot")
		}
	}
	return cloneRules(rules), nil
}

func (s *RuleStore) load(ctx context.Context, tenantID, interfaceID string) ([]model.MappingRule, error) {
	if _, err := s.datasource.GetInterface(ctx, tenantID, interfaceID); err != nil {
		var apiErr apierror.APIError
		if errors.As(err, &apiErr) && apiErr.Code == apierror.ErrNotFound {
			return nil, model.RuleLookupError{TenantID: tenantID, InterfaceID: interfaceID}
		}
		return nil, model.RuleLookupError{TenantID: tenantID, InterfaceID: interfaceID, Err: err}
	}

	rules, err := s.datasource.GetActiveRules(ctx, tenantID, interfaceID)
	if err != nil {
		return nil, model.RuleLookupError{TenantID: tenantID, InterfaceID: interfaceID, Err: err}
	}

	active := make([]model.MappingRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Active && rule.TenantID == tenantID {
			active = append(active, rule)
		}
	}
	model.SortRules(active)
	return active, nil
}

// local returns the in-process snapshot when it was loaded under version and has not expired.
func (s *RuleStore) local(key string, version int64) (ruleSnapshot, bool) {
	snap, ok := (*s.snapshots.Load())[key]
	if !ok || snap.Version != version {
		return ruleSnapshot{}, false
	}
	if s.ttl > 0 && time.Since(snap.LoadedAt) > s.ttl {
		return ruleSnapshot{}, false
	}
	return snap, true
}

// publish swaps in a new map containing snap. Existing maps are never mutated.
func (s *RuleStore) publish(key string, snap ruleSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := *s.snapshots.Load()
	next := make(map[string]ruleSnapshot, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[key] = snap
	s.snapshots.Store(&next)
}

// Invalidate bumps the interface's rule set version, which retires every cached
// snapshot in every process, and drops the local one.
func (s *RuleStore) Invalidate(ctx context.Context, tenantID, interfaceID string) {
	key := ruleKey(tenantID, interfaceID)

	if s.versions != nil {
		if err := s.versions.Incr(ctx, ruleVersionKey(tenantID, interfaceID)).Err(); err != nil {
			logrus.WithError(err).WithField("key", key).Error("failed to bump rule set version")
		}
	}

	s.mu.Lock()
	current := *s.snapshots.Load()
	next := make(map[string]ruleSnapshot, len(current))
	for k, v := range current {
		if k != key {
			next[k] = v
		}
	}
	s.snapshots.Store(&next)
	s.mu.Unlock()
}

// CreateRule saves one rule. An active rule may not claim a target field that
// another active rule of the interface already writes.
func (s *RuleStore) CreateRule(ctx context.Context, rule model.MappingRule) (model.MappingRule, error) {
	rule = prepareRule(rule, rule.TenantID, rule.InterfaceID)
	if err := ValidateRule(rule); err != nil {
		return rule, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}

	if _, err := s.datasource.GetInterface(ctx, rule.TenantID, rule.InterfaceID); err != nil {
		return rule, err
	}

	existing, err := s.datasource.GetRulesByInterface(ctx, rule.TenantID, rule.InterfaceID)
	if err != nil {
		return rule, err
	}
	if duplicates := model.DuplicateTargets(append(existing, rule)); len(duplicates) > 0 {
		return rule, duplicateTargetsError(duplicates)
	}

	created, err := s.datasource.CreateMappingRule(ctx, rule)
	if err != nil {
		return created, err
	}
	s.Invalidate(ctx, rule.TenantID, rule.InterfaceID)
	return created, nil
}

// ReplaceRules atomically swaps the interface's whole rule set.
func (s *RuleStore) ReplaceRules(ctx context.Context, tenantID, interfaceID string, rules []model.MappingRule) ([]model.MappingRule, error) {
	prepared := make([]model.MappingRule, len(rules))
	for i, rule := range rules {
		prepared[i] = prepareRule(rule, tenantID, interfaceID)
		if err := ValidateRule(prepared[i]); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("rule %d (%s): %v", i+1, rule.Name, err), nil)
		}
	}
	if duplicates := model.DuplicateTargets(prepared); len(duplicates) > 0 {
		return nil, duplicateTargetsError(duplicates)
	}
	if _, err := s.datasource.GetInterface(ctx, tenantID, interfaceID); err != nil {
		return nil, err
	}

	saved, err := s.datasource.ReplaceMappingRules(ctx, tenantID, interfaceID, prepared)
	if err != nil {
		return nil, err
	}
	s.Invalidate(ctx, tenantID, interfaceID)
	return saved, nil
}

// DeleteRule removes one rule of the interface.
func (s *RuleStore) DeleteRule(ctx context.Context, tenantID, interfaceID, ruleID string) error {
	if err := s.datasource.DeleteMappingRule(ctx, tenantID, interfaceID, ruleID); err != nil {
		return err
	}
	s.Invalidate(ctx, tenantID, interfaceID)
	return nil
}

func prepareRule(rule model.MappingRule, tenantID, interfaceID string) model.MappingRule {
	rule.TenantID = tenantID
	rule.InterfaceID = interfaceID
	rule.Name = strings.TrimSpace(rule.Name)
	rule.SourcePath = strings.TrimSpace(rule.SourcePath)
	rule.TargetField = strings.TrimSpace(rule.TargetField)
	rule.Transformation = strings.TrimSpace(rule.Transformation)
	if rule.RuleID == "" {
		rule.RuleID = model.GenerateUUIDWithSuffix("rul")
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}
	return rule
}

// ValidateRule checks the fields every stored rule must carry.
func ValidateRule(rule model.MappingRule) error {
	return validation.ValidateStruct(&rule,
		validation.Field(&rule.TenantID, validation.Required),
		validation.Field(&rule.InterfaceID, validation.Required),
		validation.Field(&rule.Name, validation.Required),
		validation.Field(&rule.SourcePath, validation.Required),
		validation.Field(&rule.TargetField, validation.Required),
	)
}

func duplicateTargetsError(targets []string) error {
	return apierror.NewAPIError(apierror.ErrConflict,
		fmt.Sprintf("more than one active rule writes target field %s", strings.Join(targets, ", ")), nil)
}

func cloneRules(rules []model.MappingRule) []model.MappingRule {
	out := make([]model.MappingRule, len(rules))
	copy(out, rules)
	return out
}
