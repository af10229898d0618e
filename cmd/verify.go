package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edp1096/spkline/internal/consts"
	"github.com/edp1096/spkline/pkg/analysis"
	"github.com/edp1096/spkline/pkg/device"
	"github.com/edp1096/spkline/pkg/netlist"
	"github.com/edp1096/spkline/pkg/network"
	"github.com/edp1096/spkline/pkg/util"
)

type verifyOptions struct {
	json    bool
	netlist bool
	system  bool
}

func newVerifyCmd(a *app) *cobra.Command {
	opts := &verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify <project>",
		Short: "Cross-check low-Z results against a nodal solve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(a, opts, args[0])
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.json, "json", false, "print the report as JSON")
	f.BoolVar(&opts.netlist, "netlist", false, "print the generated netlist of every root")
	f.BoolVar(&opts.system, "system", false, "print the stamped matrix system at the base frequency")
	return cmd
}

func runVerify(a *app, opts *verifyOptions, path string) error {
	step := func(msg string) {
		if !opts.json {
			fmt.Println(msg)
		}
	}

	step("[1] Reading project...")
	_, in, err := a.loadProject(path)
	if err != nil {
		return err
	}

	engine, err := a.engine()
	if err != nil {
		return err
	}

	step("[2] Recomputing and solving nodal systems...")
	rep, err := analysis.NewService(engine).Verify(in)
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	step("[3] Results")
	roots := in.LowZ.Index()
	for _, rc := range rep.Roots {
		printRootCheck(rc, opts.netlist)
		if opts.system && rc.Error == "" {
			if err := printSystem(in, roots, rc); err != nil {
				return err
			}
		}
	}
	if len(rep.Roots) == 0 {
		fmt.Println("No driven low-Z roots to verify")
	}
	return nil
}

func printRootCheck(rc analysis.RootCheck, withNetlist bool) {
	fmt.Printf("\n===== %s (source %s) =====\n", rc.RootID, util.FormatValueFactor(rc.SourceVoltage, "V"))
	if rc.Error != "" {
		fmt.Printf("  nodal solve failed: %s\n", rc.Error)
		return
	}
	fmt.Printf("  %-12s %10s %10s %10s %10s %10s\n", "node", "reduced", "nodal", "dev", "hf red", "hf nodal")
	for _, n := range rc.Nodes {
		fmt.Printf("  %-12s %10s %10s %10s %10s %10s\n",
			n.NodeID,
			util.FormatMagnitude(n.ReducedVolts),
			util.FormatMagnitude(n.NodalVolts),
			util.FormatPercent(n.DeviationPercent),
			util.FormatDB(n.ReducedHFLossDB),
			util.FormatDB(n.NodalHFLossDB),
		)
	}
	fmt.Printf("  max deviation: %s\n", util.FormatPercent(rc.MaxDeviationPercent))
	if withNetlist {
		fmt.Println()
		fmt.Print(rc.Netlist)
	}
}

// printSystem rebuilds the root's circuit and dumps the system stamped at
// the base frequency, before factorization.
func printSystem(in analysis.Input, nodes map[string]*network.Node, rc analysis.RootCheck) error {
	root, ok := nodes[rc.RootID]
	if !ok {
		return fmt.Errorf("root %q: %w", rc.RootID, network.ErrNodeNotFound)
	}
	reducer := network.NewReducer(in.DB, in.Settings.AmbientC)
	nc := analysis.NewNodalCheck(root, reducer, netlist.Source{Voltage: rc.SourceVoltage}, consts.BaseFrequency)
	defer nc.Destroy()
	if err := nc.Setup(); err != nil {
		return err
	}

	m := nc.Circuit.GetMatrix()
	m.Clear()
	if err := nc.Circuit.Stamp(&device.CircuitStatus{Frequency: consts.BaseFrequency}); err != nil {
		return err
	}
	fmt.Printf("\nSystem at %s:\n", util.FormatFrequency(consts.BaseFrequency))
	m.PrintSystem(os.Stdout)
	return nil
}
