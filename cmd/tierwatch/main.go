package main

import (
	"fmt"
	"os"

	"github.com/rvachev/tierwatch/internal/cli"
	"github.com/rvachev/tierwatch/internal/logging"
)

func main() {
	defer logging.Close()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
