package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set by goreleaser at build time.
var version = "dev"

// Global flags shared by every subcommand.
type globalFlags struct {
	ConfigPath string
	Verbose    bool
	Backend    string
	Fixture    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "scimpact",
		Short: "Explain what breaks if a supplier fails",
		Long: `scimpact answers "what breaks if supplier X fails?" over a supply-chain
knowledge graph. It walks supplies, multi-tier bill-of-materials and delivery
edges to list impacted parts, products and regions, then asks a language model
for a short risk narrative grounded only in that evidence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "scimpact.yaml", "path to the configuration file")
	root.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&flags.Backend, "backend", "", "graph backend override: sparql, memory or kuzu")
	root.PersistentFlags().StringVar(&flags.Fixture, "fixture", "", "YAML graph fixture for the memory and kuzu backends")

	root.AddCommand(
		newImpactCmd(&flags),
		newServeCmd(&flags),
		newMCPCmd(&flags),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
