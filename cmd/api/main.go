package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "v1.0.0"

var rootCmd = &cobra.Command{
	Use:           "hris",
	Short:         "HRIS core API: attendance and leave management",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
