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

import "fmt"

// Kind tags how a transformation ended.
type Kind int

const (
	// Ok means the value was transformed cleanly.
	Ok Kind = iota
	// Warned means a value is present but something non-fatal happened,
	// usually that the raw value was passed through unchanged.
	Warned
	// Failed means the transformation could not produce a value.
	// Pipeline.Apply never returns Failed; it degrades to Warned with the raw value.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Ok:
		return "ok"
	case Warned:
		return "warned"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of one transformation.
type Result struct {
	Value   string
	Kind    Kind
	Warning string
}

// Value wraps a successfully transformed value.
func Value(v string) Result {
	return Result{Value: v, Kind: Ok}
}

// Warn wraps a value that should be used, along with a warning to log.
func Warn(v, format string, args ...interface{}) Result {
	return Result{Value: v, Kind: Warned, Warning: fmt.Sprintf(format, args...)}
}

// Fail reports that raw could not be transformed.
func Fail(raw string, err error) Result {
	return Result{Value: raw, Kind: Failed, Warning: err.Error()}
}

func (r Result) HasWarning() bool {
	return r.Kind != Ok && r.Warning != ""
}

// Func converts one raw string into a normalized string.
type Func func(raw string) Result

// Table maps lower-case transformation names to their functions.
type Table map[string]Func

// Merge returns a new table holding t's entries overlaid by other's.
func (t Table) Merge(other Table) Table {
	merged := make(Table, len(t)+len(other))
	for name, fn := range t {
		merged[name] = fn
	}
	for name, fn := range other {
		merged[name] = fn
	}
	return merged
}
