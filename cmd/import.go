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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/inlethq/inlet/model"
)

// runLocalImport opens a local spreadsheet and feeds it through the given
// import flow, printing the resulting report as JSON.
func runLocalImport(path string, flow func(ctx context.Context, file io.Reader, filename string) (*model.ImportRun, error)) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()

	run, err := flow(context.Background(), f, filepath.Base(path))
	if err != nil {
		if run != nil {
			log.Printf("import %s failed", run.ImportID)
		}
		log.Fatal(err)
	}

	out, err := json.MarshalIndent(run.Report, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("import %s completed\n%s\n", run.ImportID, out)
}

// importCommands returns the command group for running imports against local
// files without going through the HTTP API.
func importCommands(i *inletInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "run an import from a local spreadsheet",
	}

	var projectID string

	contactsCmd := &cobra.Command{
		Use:   "contacts [file]",
		Short: "import contacts into a project",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if projectID == "" {
				log.Fatal("--project is required")
			}
			runLocalImport(args[0], func(ctx context.Context, file io.Reader, filename string) (*model.ImportRun, error) {
				return i.inlet.ImportContacts(ctx, projectID, file, filename)
			})
		},
	}
	contactsCmd.Flags().StringVar(&projectID, "project", "", "target project ID")

	visionModelsCmd := &cobra.Command{
		Use:   "vision-models [file]",
		Short: "import vision models into a project",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if projectID == "" {
				log.Fatal("--project is required")
			}
			runLocalImport(args[0], func(ctx context.Context, file io.Reader, filename string) (*model.ImportRun, error) {
				return i.inlet.ImportVisionModels(ctx, projectID, file, filename)
			})
		},
	}
	visionModelsCmd.Flags().StringVar(&projectID, "project", "", "target project ID")

	accountsCmd := &cobra.Command{
		Use:   "accounts [file]",
		Short: "bulk update account info",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runLocalImport(args[0], i.inlet.BulkUpdateAccounts)
		},
	}

	cmd.AddCommand(contactsCmd)
	cmd.AddCommand(visionModelsCmd)
	cmd.AddCommand(accountsCmd)

	return cmd
}
