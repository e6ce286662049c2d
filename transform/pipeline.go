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
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// maxSuggestionDistance bounds how far a misspelt name may be from a known one
// before no suggestion is offered.
const maxSuggestionDistance = 3

// Pipeline resolves transformation names against a strategy's overrides first
// and the generic built-in table second.
type Pipeline struct {
	builtins Table
}

func NewPipeline() *Pipeline {
	return &Pipeline{builtins: Builtins()}
}

// Apply transforms raw with the named transformation. It never fails: an unknown
// name or a failed parse passes raw through unchanged with a warning.
func (p *Pipeline) Apply(raw, name string, overrides Table) Result {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Value(raw)
	}

	fn, ok := overrides[key]
	if !ok {
		fn, ok = p.builtins[key]
	}
	if !ok {
		if suggestion := p.suggest(key, overrides); suggestion != "" {
			return Warn(raw, "unknown transformation %q (did you mean %q?), value passed through", name, suggestion)
		}
		return Warn(raw, "unknown transformation %q, value passed through", name)
	}

	result := fn(raw)
	if result.Kind == Failed {
		return Warn(raw, "transformation %q failed: %s; value passed through", key, result.Warning)
	}
	return result
}

// Known reports whether name resolves to a transformation.
func (p *Pipeline) Known(name string, overrides Table) bool {
	key := strings.ToLower(strings.TrimSpace(name))
	if _, ok := overrides[key]; ok {
		return true
	}
	_, ok := p.builtins[key]
	return ok
}

// Names lists every transformation name visible with the given overrides, sorted.
func (p *Pipeline) Names(overrides Table) []string {
	merged := p.builtins.Merge(overrides)
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Pipeline) suggest(key string, overrides Table) string {
	best, bestDistance := "", maxSuggestionDistance+1
	for _, name := range p.Names(overrides) {
		distance := levenshtein.DistanceForStrings([]rune(key), []rune(name), levenshtein.DefaultOptions)
		if distance < bestDistance {
			best, bestDistance = name, distance
		}
	}
	return best
}

