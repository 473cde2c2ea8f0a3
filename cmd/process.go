package main

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/adrecon/internal/dashboard"
	"github.com/sells-group/adrecon/internal/export"
	"github.com/sells-group/adrecon/internal/model"
	"github.com/sells-group/adrecon/internal/reconcile"
)

// processOptions holds the process command's flags.
type processOptions struct {
	inputs reconcile.Inputs
	out    string
	stats  bool
	filter url.Values
}

var processFlags processOptions

// processFilter holds the statistics filter flags by query parameter name.
var processFilter = map[string]*string{
	"date_from":      new(string),
	"date_to":        new(string),
	"agent":          new(string),
	"bidding_method": new(string),
	"resource":       new(string),
	"material":       new(string),
	"benefit":        new(string),
	"targeting":      new(string),
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Reconcile source workbooks offline",
	Long:  "Runs the reconciliation pipeline on local paths or http(s)/ftp locations, writes the merged workbook, and optionally prints the statistics bundle as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("process"); err != nil {
			return err
		}

		pipe, err := initPipeline()
		if err != nil {
			return err
		}

		opts := processFlags
		opts.filter = url.Values{}
		for k, v := range processFilter {
			if *v != "" {
				opts.filter.Set(k, *v)
			}
		}
		return runProcess(cmd.Context(), pipe, initResolver(), opts, cmd.OutOrStdout())
	},
}

type snapshotProcessor interface {
	Process(in reconcile.Inputs) (*model.Snapshot, error)
}

func runProcess(ctx context.Context, pipe snapshotProcessor, res reconcile.Resolver, opts processOptions, w io.Writer) error {
	if err := opts.inputs.Validate(); err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "adrecon-*")
	if err != nil {
		return eris.Wrap(err, "process: create download dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	in, err := reconcile.ResolveInputs(ctx, res, opts.inputs, dir)
	if err != nil {
		return err
	}

	snap, err := pipe.Process(in)
	if err != nil {
		return err
	}

	out := opts.out
	if out == "" && !opts.stats {
		out = export.Filename(time.Now())
	}
	if out != "" {
		if err := writeWorkbook(out, snap); err != nil {
			return err
		}
		zap.L().Info("process: workbook written", zap.String("path", out), zap.Int("rows", snap.Len()))
	}

	if opts.stats {
		stats := dashboard.Compute(snap, dashboard.ParseFilter(opts.filter))
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			return eris.Wrap(err, "process: encode statistics")
		}
	}

	return nil
}

func writeWorkbook(path string, snap *model.Snapshot) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "process: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "process: close %s", path)
		}
	}()
	return export.WriteXLSX(f, snap)
}

func init() {
	f := processCmd.Flags()
	f.StringVar(&processFlags.inputs.Kiwi, "kiwi", "", "kiwi agency workbook (path or http(s)/ftp URL)")
	f.StringVar(&processFlags.inputs.Wabang, "wabang", "", "wabang agency workbook (path or http(s)/ftp URL)")
	f.StringVar(&processFlags.inputs.Backend, "backend", "", "backend funnel workbook (path or http(s)/ftp URL)")
	f.StringVar(&processFlags.out, "out", "", "output workbook path (default ad_data_<timestamp>.xlsx)")
	f.BoolVar(&processFlags.stats, "stats", false, "print the statistics bundle as JSON")

	f.StringVar(processFilter["date_from"], "date-from", "", "statistics filter: first date (YYYY-MM-DD)")
	f.StringVar(processFilter["date_to"], "date-to", "", "statistics filter: last date (YYYY-MM-DD)")
	f.StringVar(processFilter["agent"], "agent", "", "statistics filter: agent source")
	f.StringVar(processFilter["bidding_method"], "bidding-method", "", "statistics filter: bidding method")
	f.StringVar(processFilter["resource"], "resource", "", "statistics filter: resource slot")
	f.StringVar(processFilter["material"], "material", "", "statistics filter: material style")
	f.StringVar(processFilter["benefit"], "benefit", "", "statistics filter: benefit point")
	f.StringVar(processFilter["targeting"], "targeting", "", "statistics filter: comma-separated targetings")

	rootCmd.AddCommand(processCmd)
}
