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
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
)

func schemaCommands(d *docflowInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "inspect XSD schemas",
	}

	cmd.AddCommand(schemaShowCommand(d))

	return cmd
}

// schemaShowCommand prints the element tree of a schema, indented by depth.
func schemaShowCommand(d *docflowInstance) *cobra.Command {
	var tenantID string

	cmd := &cobra.Command{
		Use:   "show [schema path]",
		Short: "print the elements declared by a schema",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			elements, err := d.docflow.Schemas().Structure(args[0], tenantID)
			if err != nil {
				log.Fatalf("Error reading schema: %v", err)
			}

			for _, e := range elements {
				depth := strings.Count(e.Path, ".")
				fmt.Printf("%s%s (%s)\n", strings.Repeat("  ", depth), e.Name, e.Type)
			}
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id whose schema overrides apply")

	return cmd
}
