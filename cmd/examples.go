package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "Show example batch inputs and API calls",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(examplesText)
	},
}

func init() {
	rootCmd.AddCommand(examplesCmd)
}

// The batch snippets below are valid inputs for batch --json; every
// operation entry carries its "operation" label.
const (
	exampleVersionMap = `{"serde": "1.0.0", "tokio": "latest", "clap": "4.0.0"}`

	exampleNameList = `{"crates": ["serde", "tokio", "clap"]}`

	exampleOperationList = `{"operations": [
     {"crate": "serde", "version": "1.0.0", "operation": "check_version"},
     {"crate": "tokio", "operation": "check"},
     {"crates": ["clap", "anyhow"], "operation": "check_multiple"}
   ]}`
)

var examplesText = `Batch input shapes
==================

1. Version map (crate name to version, "latest" allowed):

   ` + exampleVersionMap + `

2. Crate list (existence checks only):

   ` + exampleNameList + `

3. Operation list (mixed per-item operations):

   ` + exampleOperationList + `

CLI usage
=========

   crate-checker check serde
   crate-checker check serde --version 1.0.0
   crate-checker check-multiple serde tokio clap --summary-only
   crate-checker batch --json '{"crates": ["serde", "tokio"]}' --parallel
   crate-checker batch --file crates.json -f json
   crate-checker watch crates.json

HTTP API
========

   crate-checker server --port 8080

   curl localhost:8080/api/crates/serde
   curl localhost:8080/api/crates/serde/1.0.0
   curl localhost:8080/api/crates/serde/1.0.0/deps
   curl localhost:8080/api/crates/serde/stats
   curl localhost:8080/api/crates/serde/status
   curl 'localhost:8080/api/search?q=http&limit=5'
   curl -X POST localhost:8080/api/batch \
        -H 'Content-Type: application/json' \
        -d '{"crates": ["serde", "tokio"], "options": {"parallel": true}}'
`
