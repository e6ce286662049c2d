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
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blnkfinance/docflow"
	"github.com/blnkfinance/docflow/config"
	"github.com/blnkfinance/docflow/database"
	"github.com/blnkfinance/docflow/internal/notification"
)

// Docflow wraps the root cobra command.
type Docflow struct {
	cmd *cobra.Command
}

// docflowInstance holds the engine and configuration shared by every command.
type docflowInstance struct {
	docflow *docflow.Docflow
	cnf     *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and builds the engine before any command runs.
func preRun(app *docflowInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(*configFile)
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newDocflow, err := setupDocflow(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.docflow = newDocflow
		app.cnf = cnf
		return nil
	}
}

func setupDocflow(cfg *config.Configuration) (*docflow.Docflow, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newDocflow, err := docflow.NewDocflow(db)
	if err != nil {
		return nil, fmt.Errorf("error creating docflow: %v", err)
	}
	return newDocflow, nil
}

func NewCLI() *Docflow {
	var configFile string
	d := &docflowInstance{}

	var rootCmd = &cobra.Command{
		Use:   "docflow",
		Short: "Multi-tenant XML document mapping engine",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./docflow.json", "Configuration file for docflow")
	rootCmd.PersistentPreRunE = preRun(d, &configFile)

	rootCmd.AddCommand(serverCommands(d))
	rootCmd.AddCommand(workerCommands(d))
	rootCmd.AddCommand(migrateCommands(d))
	rootCmd.AddCommand(configCommands(d))
	rootCmd.AddCommand(rulesCommands(d))
	rootCmd.AddCommand(schemaCommands(d))

	return &Docflow{cmd: rootCmd}
}

func (w Docflow) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
