package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/scimpact/internal/export"
	"github.com/dusk-indust/scimpact/internal/impact"
)

// Output formats accepted by --format.
const (
	formatText    = "text"
	formatJSON    = "json"
	formatMermaid = "mermaid"
)

type impactFlags struct {
	TopKParts    int
	TopKProducts int
	TopKRegions  int
	Format       string
}

func newImpactCmd(global *globalFlags) *cobra.Command {
	var flags impactFlags

	cmd := &cobra.Command{
		Use:   "impact <supplier name>",
		Short: "Analyze what breaks if a supplier fails",
		Example: `  scimpact impact "Acme Metals"
  scimpact impact "Acme Metals" --top-k-products 5 --format json
  scimpact impact "Acme Metals" --backend memory --fixture testdata/fixtures/supplychain.yaml --format mermaid`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runImpact(ctx, global, flags, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&flags.TopKParts, "top-k-parts", impact.DefaultTopK, "maximum impacted parts")
	cmd.Flags().IntVar(&flags.TopKProducts, "top-k-products", impact.DefaultTopK, "maximum impacted products")
	cmd.Flags().IntVar(&flags.TopKRegions, "top-k-regions", impact.DefaultTopK, "maximum impacted regions")
	cmd.Flags().StringVarP(&flags.Format, "format", "f", formatText, "output format: text, json or mermaid")
	return cmd
}

func runImpact(ctx context.Context, global *globalFlags, flags impactFlags, supplier string, out io.Writer) error {
	switch flags.Format {
	case formatText, formatJSON, formatMermaid:
	default:
		return fmt.Errorf("unknown format %q (want text, json or mermaid)", flags.Format)
	}

	a, err := newApp(ctx, global)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.analyzer.Analyze(ctx, supplier, impact.Limits{
		Parts:    flags.TopKParts,
		Products: flags.TopKProducts,
		Regions:  flags.TopKRegions,
	})
	if err != nil {
		return fmt.Errorf("impact analysis failed: %w", err)
	}

	return writeReport(out, report, flags.Format)
}

func writeReport(out io.Writer, report *impact.Report, format string) error {
	switch format {
	case formatJSON:
		data, err := export.GenerateJSON(report)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case formatMermaid:
		diagram, err := export.GenerateMermaid(report)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, diagram)
		return err
	default:
		_, err := io.WriteString(out, export.GenerateText(report))
		return err
	}
}
