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

import "time"

type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "PENDING"
	StatusProcessing ProcessingStatus = "PROCESSING"
	StatusSuccess    ProcessingStatus = "SUCCESS"
	StatusError      ProcessingStatus = "ERROR"
)

// IsTerminal reports whether no further transition is allowed from the status.
func (s ProcessingStatus) IsTerminal() bool {
	return s == StatusSuccess || s == StatusError
}

// CanTransitionTo enforces PENDING -> PROCESSING -> {SUCCESS, ERROR}.
func (s ProcessingStatus) CanTransitionTo(next ProcessingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next.IsTerminal()
	default:
		return false
	}
}

// ProcessingOutcome is the audit record of one document's processing attempt.
type ProcessingOutcome struct {
	OutcomeID    string            `json:"outcome_id"`
	TenantID     string            `json:"tenant_id"`
	InterfaceID  string            `json:"interface_id"`
	FileName     string            `json:"file_name"`
	Status       ProcessingStatus  `json:"status"`
	Strategy     string            `json:"strategy,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Fields       map[string]string `json:"fields"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// Assembly is the result of evaluating one interface's rules against one document.
type Assembly struct {
	Fields       map[string]string `json:"fields"`
	Status       ProcessingStatus  `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Warnings     []string          `json:"warnings,omitempty"`
}

// Failed builds an ERROR assembly. Fields are always empty on failure.
func Failed(message string, warnings []string) Assembly {
	return Assembly{
		Fields:       map[string]string{},
		Status:       StatusError,
		ErrorMessage: message,
		Warnings:     warnings,
	}
}

// ElementInfo is one element declaration found while walking a schema.
type ElementInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Path string `json:"path"`
}
