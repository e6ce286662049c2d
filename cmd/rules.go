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

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// rulesCommands manages mapping rules from rule files.
func rulesCommands(d *docflowInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "manage mapping rules",
	}

	cmd.AddCommand(rulesImportCommand(d))
	cmd.AddCommand(rulesListCommand(d))

	return cmd
}

func rulesImportCommand(d *docflowInstance) *cobra.Command {
	var tenantRef, interfaceID, file, format string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "replace an interface's rules with a YAML or JSON rule file",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			content, err := os.ReadFile(file)
			if err != nil {
				log.Fatalf("Error reading rule file: %v", err)
			}
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(file), ".")
			}

			t, err := d.docflow.ResolveTenant(ctx, tenantRef)
			if err != nil {
				log.Fatalf("Error resolving tenant %s: %v", tenantRef, err)
			}

			result, err := d.docflow.ImportRules(ctx, t.TenantID, interfaceID, content, format)
			if err != nil {
				log.Fatalf("Error importing rules: %v", err)
			}

			fmt.Printf("Imported %d rules into %s\n", len(result.Imported), interfaceID)
			for _, warning := range result.Warnings {
				fmt.Printf("warning: %s\n", warning)
			}
		},
	}

	cmd.Flags().StringVar(&tenantRef, "tenant", "", "tenant id or code")
	cmd.Flags().StringVar(&interfaceID, "interface", "", "interface id")
	cmd.Flags().StringVar(&file, "file", "", "path to the rule file")
	cmd.Flags().StringVar(&format, "format", "", "rule file format (yaml or json), taken from the file extension when empty")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("interface")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func rulesListCommand(d *docflowInstance) *cobra.Command {
	var tenantRef, interfaceID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "list an interface's rules in evaluation order",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			t, err := d.docflow.ResolveTenant(ctx, tenantRef)
			if err != nil {
				log.Fatalf("Error resolving tenant %s: %v", tenantRef, err)
			}

			rules, err := d.docflow.Rules().ActiveRules(ctx, t.TenantID, interfaceID)
			if err != nil {
				log.Fatalf("Error loading rules: %v", err)
			}

			for _, r := range rules {
				fmt.Printf("%4d  %-30s %-40s %s\n", r.Priority, r.TargetField, r.SourcePath, r.Transformation)
			}
		},
	}

	cmd.Flags().StringVar(&tenantRef, "tenant", "", "tenant id or code")
	cmd.Flags().StringVar(&interfaceID, "interface", "", "interface id")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("interface")

	return cmd
}
