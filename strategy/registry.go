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
	"errors"
	"fmt"

	"github.com/blnkfinance/docflow/model"
	"github.com/sirupsen/logrus"
)

// Registry selects the strategy responsible for a document type.
//
// Strategies are registered at startup and the registry is then sealed into an
// immutable lookup table. Resolution after Seal takes no locks.
type Registry struct {
	strategies []Strategy
	table      map[string]Strategy
	sealed     bool
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a strategy. Registration order breaks priority ties: the first
// registered strategy wins.
func (r *Registry) Register(s Strategy) error {
	if r.sealed {
		return errors.New("strategy registry is sealed")
	}
	if s == nil {
		return errors.New("strategy is nil")
	}
	for _, existing := range r.strategies {
		if existing.Name() == s.Name() {
			return fmt.Errorf("strategy %s is already registered", s.Name())
		}
	}
	r.strategies = append(r.strategies, s)
	return nil
}

// Seal freezes the registry and precomputes the strategy for every declared type.
func (r *Registry) Seal() {
	if r.sealed {
		return
	}
	table := make(map[string]Strategy)
	for _, s := range r.strategies {
		for _, documentType := range s.DocumentTypes() {
			key := model.NormalizeDocumentType(documentType)
			if _, done := table[key]; done {
				continue
			}
			if best := r.scan(key); best != nil {
				table[key] = best
			}
		}
	}
	r.table = table
	r.sealed = true

	for documentType, s := range table {
		logrus.WithFields(logrus.Fields{
			"document_type": documentType,
			"strategy":      s.Name(),
			"priority":      s.Priority(),
		}).Debug("strategy bound")
	}
}

// Resolve returns the highest-priority strategy that can handle documentType.
func (r *Registry) Resolve(documentType string) (Strategy, error) {
	key := model.NormalizeDocumentType(documentType)
	if key == "" {
		return nil, model.StrategyNotFoundError{DocumentType: documentType}
	}
	if s, ok := r.table[key]; ok {
		return s, nil
	}
	if s := r.scan(key); s != nil {
		return s, nil
	}
	return nil, model.StrategyNotFoundError{DocumentType: documentType}
}

// Strategies returns the registered strategies in registration order.
func (r *Registry) Strategies() []Strategy {
	return append([]Strategy(nil), r.strategies...)
}

func (r *Registry) scan(documentType string) Strategy {
	var best Strategy
	for _, s := range r.strategies {
		if !s.CanHandle(documentType) {
			continue
		}
		// strictly greater keeps the earliest registration on ties
		if best == nil || s.Priority() > best.Priority() {
			best = s
		}
	}
	return best
}

// DefaultRegistry registers the built-in strategies and seals the registry.
// With genericFallback the generic XML strategy accepts any document type that
// no specialised strategy claims.
func DefaultRegistry(genericFallback bool) *Registry {
	r := NewRegistry()
	for _, s := range []Strategy{
		NewASNStrategy(),
		NewInvoiceStrategy(),
		NewOrderStrategy(),
		NewShipmentStrategy(),
		NewXMLStrategy(genericFallback),
	} {
		if err := r.Register(s); err != nil {
			logrus.Fatalf("registering strategy %s: %v", s.Name(), err)
		}
	}
	r.Seal()
	return r
}
