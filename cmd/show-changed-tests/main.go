package main

import (
	"os"

	"github.com/dev-threads/show-changed-tests/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
