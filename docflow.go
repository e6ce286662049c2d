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
	"embed"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blnkfinance/docflow/config"
	"github.com/blnkfinance/docflow/database"
	"github.com/blnkfinance/docflow/internal/cache"
	redis_db "github.com/blnkfinance/docflow/internal/redis-db"
	"github.com/blnkfinance/docflow/internal/xpath"
	"github.com/blnkfinance/docflow/strategy"
	"github.com/blnkfinance/docflow/transform"
)

// Docflow wires the mapping engine to its persistence, cache and queue.
type Docflow struct {
	config     *config.Configuration
	datasource database.IDataSource
	queue      *Queue
	redis      redis.UniversalClient
	registry   *strategy.Registry
	pipeline   *transform.Pipeline
	extractor  *xpath.Extractor
	rules      *RuleStore
	assembler  *Assembler
	schemas    *SchemaIntrospector
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// NewDocflow builds a Docflow from the loaded configuration. Redis must be reachable.
func NewDocflow(db database.IDataSource) (*Docflow, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	redisClient, err := redis_db.NewRedisClient([]string{configuration.Redis.Dns}, configuration.Redis.SkipTLSVerify)
	if err != nil {
		return nil, err
	}

	return New(configuration, db, redisClient)
}

// New builds a Docflow from an explicit configuration and an open Redis connection.
func New(configuration *config.Configuration, db database.IDataSource, redisClient *redis_db.Redis) (*Docflow, error) {
	queue, err := NewQueue(configuration)
	if err != nil {
		return nil, err
	}
	return newDocflow(configuration, db, redisClient.Client(), cache.NewRedisCache(redisClient), queue), nil
}

func newDocflow(configuration *config.Configuration, db database.IDataSource, rc redis.UniversalClient, ruleCache cache.Cache, queue *Queue) *Docflow {
	extractor := xpath.NewExtractor()
	pipeline := transform.NewPipeline()
	rules := NewRuleStore(db, ruleCache, rc, time.Duration(configuration.Processing.RuleCacheTTLSec)*time.Second)

	return &Docflow{
		config:     configuration,
		datasource: db,
		queue:      queue,
		redis:      rc,
		registry:   strategy.DefaultRegistry(configuration.Processing.GenericFallback),
		pipeline:   pipeline,
		extractor:  extractor,
		rules:      rules,
		assembler:  NewAssembler(rules, extractor, pipeline),
		schemas:    NewSchemaIntrospector(configuration.Processing.SchemaDir),
	}
}

// Registry returns the sealed strategy registry.
func (d *Docflow) Registry() *strategy.Registry {
	return d.registry
}

// Rules returns the rule store backing assembly.
func (d *Docflow) Rules() *RuleStore {
	return d.rules
}

// Transformations lists the transformation names usable by rules of documentType,
// including the overrides of the strategy that handles it.
func (d *Docflow) Transformations(documentType string) ([]string, error) {
	if documentType == "" {
		return d.pipeline.Names(nil), nil
	}
	s, err := d.registry.Resolve(documentType)
	if err != nil {
		return nil, err
	}
	return d.pipeline.Names(s.Transformations()), nil
}

// Close releases the queue and redis connections.
func (d *Docflow) Close() error {
	if d.queue != nil {
		if err := d.queue.Close(); err != nil {
			return err
		}
	}
	if d.redis != nil {
		return d.redis.Close()
	}
	return nil
}
