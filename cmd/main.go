/*
Copyright 2024 Inlet Authors.

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

	"github.com/inlethq/inlet"
	"github.com/inlethq/inlet/config"
	"github.com/inlethq/inlet/database"
	"github.com/inlethq/inlet/internal/notification"
)

// CLI is the root command of the inlet binary.
type CLI struct {
	cmd *cobra.Command
}

// inletInstance holds the service instance and its configuration, shared
// between subcommands.
type inletInstance struct {
	inlet *inlet.Inlet
	cnf   *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and wires the service before any subcommand
// runs.
func preRun(app *inletInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(*configFile)
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newInlet, err := setupInlet(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.inlet = newInlet
		app.cnf = cnf

		return nil
	}
}

func setupInlet(cfg *config.Configuration) (*inlet.Inlet, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newInlet, err := inlet.NewInlet(db)
	if err != nil {
		return nil, fmt.Errorf("error creating inlet: %v", err)
	}
	return newInlet, nil
}

func NewCLI() *CLI {
	var configFile string
	i := &inletInstance{}

	var rootCmd = &cobra.Command{
		Use:   "inlet",
		Short: "Bulk import and reconciliation service",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./inlet.json", "Configuration file for inlet")
	rootCmd.PersistentPreRunE = preRun(i, &configFile)

	rootCmd.AddCommand(serverCommands(i))
	rootCmd.AddCommand(importCommands(i))

	return &CLI{cmd: rootCmd}
}

func (w CLI) executeCLI() {
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
