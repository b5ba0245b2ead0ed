package main

import (
	"os"

	"github.com/veridex-io/mailguard/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
