package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "contactctl",
		Short:         "SecurePort contact form tooling",
		Long:          `Submit contact messages through the verification gateway and inspect the effective configuration.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newSubmitCmd())
	root.AddCommand(newConfigCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
