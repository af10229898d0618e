package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/edp1096/spkline/pkg/analysis"
	"github.com/edp1096/spkline/pkg/project"
	"github.com/edp1096/spkline/pkg/report"
	"github.com/edp1096/spkline/pkg/util"
)

type calcOptions struct {
	format string
	bom    bool
	write  bool
	output string
}

func newCalcCmd(a *app) *cobra.Command {
	opts := &calcOptions{}
	cmd := &cobra.Command{
		Use:   "calc <project>",
		Short: "Recompute a project and print the line schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(a, opts, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", "table", "output format: table, json or csv")
	f.BoolVar(&opts.bom, "bom", false, "print the bill of materials instead of the schedule")
	f.BoolVarP(&opts.write, "write", "w", false, "store the results back into the project file")
	f.StringVarP(&opts.output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func runCalc(a *app, opts *calcOptions, path string) error {
	a.log.Debug("reading project", "path", path)
	p, in, err := a.loadProject(path)
	if err != nil {
		return err
	}

	engine, err := a.engine()
	if err != nil {
		return err
	}
	out, err := analysis.NewService(engine).Recompute(in)
	if err != nil {
		return err
	}
	a.log.Info("recompute finished",
		"nodes", out.Summary.Nodes,
		"warnings", out.Summary.Warnings,
		"errors", out.Summary.Errors,
	)

	if opts.write {
		if err := p.Save(path); err != nil {
			return err
		}
		a.log.Info("project saved", "path", path)
	}

	w := io.Writer(os.Stdout)
	if opts.output != "" {
		file, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	return printCalc(w, opts, p, out)
}

func printCalc(w io.Writer, opts *calcOptions, p *project.Project, out analysis.Output) error {
	rows := report.Schedule(p.LowZ, p.ConstantVoltage)
	items := report.BOM(p.Rack, p.LowZ, p.ConstantVoltage)

	switch opts.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if opts.bom {
			return enc.Encode(items)
		}
		return enc.Encode(struct {
			Output   analysis.Output `json:"output"`
			Schedule []report.Row    `json:"schedule"`
		}{out, rows})
	case "csv":
		if opts.bom {
			return report.WriteBOMCSV(w, items)
		}
		return report.WriteScheduleCSV(w, rows)
	case "table":
		if opts.bom {
			for _, it := range items {
				fmt.Fprintf(w, "%-10s %-24s %10s %s\n", it.Kind, it.ID, util.FormatMagnitude(it.Quantity), it.Unit)
			}
			return nil
		}
		fmt.Fprintf(w, "Project: %s\n", p.Info.Name)
		fmt.Fprintf(w, "Profile: %s\n\n", out.Profile.Label)
		if err := report.WriteScheduleTable(w, rows); err != nil {
			return err
		}
		printSummary(w, out.Summary)
		return nil
	}
	return fmt.Errorf("unknown format %q", opts.format)
}

func printSummary(w io.Writer, s analysis.Summary) {
	fmt.Fprintf(w, "\nNodes: %d  OK: %d  Warnings: %d  Errors: %d", s.Nodes, s.OK, s.Warnings, s.Errors)
	if s.Faults > 0 {
		fmt.Fprintf(w, "  Faults: %d", s.Faults)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total RMS: %s\n", util.FormatValueFactor(s.TotalRMS, "W"))
	fmt.Fprintf(w, "Total 100V taps: %s\n", util.FormatValueFactor(s.TotalCVWatts, "W"))
}
