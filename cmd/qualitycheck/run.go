package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/qualitycheck/internal/core"
)

type runOptions struct {
	complot  string
	layer    string
	template string
	output   string
	json     bool
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one check and write the report",
		Long: `Loads the Complot CSV and the layer workbook, matches them on the file
link column and writes the report workbook to --output. The text summary is
written next to it as <output>_report.txt and printed to stdout.`,
		Example: `  qualitycheck run --complot complot.csv --layer layer.xlsx --output result.xlsx
  qualitycheck run --complot complot.csv --layer layer.xlsx --template template.xlsx --output result.xlsx --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.complot, "complot", "", "Complot CSV export")
	cmd.Flags().StringVar(&opts.layer, "layer", "", "GIS layer workbook (.xlsx)")
	cmd.Flags().StringVar(&opts.template, "template", "", "optional workbook whose first row orders the report columns")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "report workbook to write (.xlsx)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the summary as JSON")
	_ = cmd.MarkFlagRequired("complot")
	_ = cmd.MarkFlagRequired("layer")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runCheck(cmd *cobra.Command, a *app, opts runOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	history, closeHistory, err := openHistory(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	svc := core.NewService(a.cfg, history)
	res, err := svc.Run(ctx, core.RunRequest{
		PrimaryPath:  opts.complot,
		LayerPath:    opts.layer,
		TemplatePath: opts.template,
		OutputPath:   opts.output,
	}, func(p core.RunProgress) {
		slog.Debug("run progress", "phase", p.Phase, "percent", p.Percent())
	})
	if err != nil {
		return err
	}

	meta := res.Meta
	out := cmd.OutOrStdout()
	if opts.json {
		data, err := core.MarshalSummary(meta, res.Summary)
		if err != nil {
			return err
		}
		_, err = out.Write(append(data, '\n'))
		return err
	}
	return core.WriteSummaryText(out, meta, res.Summary)
}
