// nftdash - NFT collection stats dashboard
//
// Subcommands:
//   - view   interactive terminal table
//   - list   one page of the table on stdout
//   - serve  HTTP API and websocket snapshot stream
//   - export CSV to a file, S3 or Azure Blob Storage
//
// Build with: go build -ldflags "-X github.com/cryptogamefiverse/nftdash/internal/version.Version=v0.1.0" ./cmd/nftdash
package main

import (
	"os"

	"github.com/cryptogamefiverse/nftdash/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
