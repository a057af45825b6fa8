// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package main generates the JSON schema of the yangcheck config file.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	configv0 "github.com/defenseunicorns/yangcheck/config/v0"
)

func run(root string) error {
	schema := configv0.Schema()

	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(root, "yangcheck.schema.json"), append(b, '\n'), 0644)
}

// main is the entry point for the application
func main() {
	// usage: `go run gen/main.go`
	if err := run(""); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
