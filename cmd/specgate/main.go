// Command specgate aggregates OpenAPI documents from configured
// upstream services into one merged specification and serves it.
package main

import (
	"os"

	"github.com/specgate/specgate/cmd/specgate/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
