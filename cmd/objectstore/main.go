package main

import (
	"os"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
