package main

import (
	"fmt"
	"os"
)

var BUILD_VERSION = "dev"

func main() {
	os.Exit(runMain())
}

func runMain() int {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
