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

// Package tenant carries the active tenant id through a unit of work.
//
// Prefer WithTenant/FromContext and explicit tenantID parameters. Holder exists
// for call boundaries that cannot take a context, and its Scope method always
// clears the stored id on exit.
package tenant

import (
	"context"
	"fmt"
	"sync"
)

type contextKey struct{}

// WithTenant returns a copy of ctx carrying tenantID.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, contextKey{}, tenantID)
}

// FromContext returns the tenant id stored in ctx, if any.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Holder stores the tenant id for one worker at a time.
type Holder struct {
	mu       sync.RWMutex
	tenantID string
}

func (h *Holder) Set(tenantID string) {
	h.mu.Lock()
	h.tenantID = tenantID
	h.mu.Unlock()
}

func (h *Holder) Get() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tenantID, h.tenantID != ""
}

func (h *Holder) Clear() {
	h.mu.Lock()
	h.tenantID = ""
	h.mu.Unlock()
}

// Scope sets tenantID for the duration of fn and clears it on every exit path,
// including a panic inside fn. Nesting with a different tenant is refused.
func (h *Holder) Scope(tenantID string, fn func() error) error {
	if tenantID == "" {
		return fmt.Errorf("tenant id is required")
	}

	h.mu.Lock()
	if h.tenantID != "" && h.tenantID != tenantID {
		current := h.tenantID
		h.mu.Unlock()
		return fmt.Errorf("tenant scope already held by %s", current)
	}
	nested := h.tenantID == tenantID
	h.tenantID = tenantID
	h.mu.Unlock()

	if !nested {
		defer h.Clear()
	}
	return fn()
}
