package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edp1096/spkline/pkg/analysis"
	"github.com/edp1096/spkline/pkg/network"
	"github.com/edp1096/spkline/pkg/util"
)

func newSuggestCmd(a *app) *cobra.Command {
	var brand, topology string
	cmd := &cobra.Command{
		Use:   "suggest <project> <node-id>",
		Short: "List cables that keep a node's run within the profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, in, err := a.loadProject(args[0])
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}

			t := topologyOf(args[1])
			if cmd.Flags().Changed("topology") {
				t = network.Topology(topology)
			}
			list, err := analysis.NewService(engine).SuggestCables(in, t, args[1], brand)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No cable keeps the drop within the profile margin")
				return nil
			}
			for _, s := range list {
				fmt.Printf("%-20s %-12s %-20s %10s\n", s.Cable.ID, s.Cable.Brand, s.Cable.Model, util.FormatPercent(s.DropPercent))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&brand, "brand", "", "only consider cables of this brand")
	cmd.Flags().StringVar(&topology, "topology", string(network.LowZ), "low_z or constant_voltage (default from the node id)")
	return cmd
}
