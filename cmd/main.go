/*
Copyright 2025 Fathom Energy Authors.

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

	"github.com/fathomenergy/curvetrace"
	"github.com/fathomenergy/curvetrace/config"
	"github.com/fathomenergy/curvetrace/database"
)

// Curvetrace represents the CLI application, encapsulating the root Cobra command.
type Curvetrace struct {
	cmd *cobra.Command
}

// curvetraceInstance holds the service instance and its configuration, shared
// across subcommands once preRun has initialized them.
type curvetraceInstance struct {
	service *curvetrace.Curvetrace
	cnf     *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads configuration and initializes the service before any
// subcommand runs.
func preRun(app *curvetraceInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("curvetrace.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		service, err := setupCurvetrace(cnf)
		if err != nil {
			log.Fatal(err)
		}

		app.service = service
		app.cnf = cnf

		return nil
	}
}

// setupCurvetrace creates the service from the configured data source.
func setupCurvetrace(cfg *config.Configuration) (*curvetrace.Curvetrace, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	service, err := curvetrace.NewCurvetrace(db)
	if err != nil {
		return nil, fmt.Errorf("error creating curvetrace: %v", err)
	}
	return service, nil
}

// NewCLI assembles the root command and its subcommands.
func NewCLI() *Curvetrace {
	var configFile string
	instance := &curvetraceInstance{}

	var rootCmd = &cobra.Command{
		Use:   "curvetrace",
		Short: "Forecast curve versioning and freshness tracking",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./curvetrace.json", "Configuration file for curvetrace")
	rootCmd.PersistentPreRunE = preRun(instance)

	rootCmd.AddCommand(serverCommands(instance))
	rootCmd.AddCommand(migrateCommands(instance))

	return &Curvetrace{cmd: rootCmd}
}

// executeCLI runs the root command and exits on error.
func (c *Curvetrace) executeCLI() {
	if err := c.cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()
	cli := NewCLI()
	cli.executeCLI()
}
