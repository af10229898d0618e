package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/edp1096/spkline/pkg/util"
)

func newProfilesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the quality profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := a.cfg.ProfileSet()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLABEL\tLOW-Z DROP\tCV DROP\tDF\tHEADROOM\tHF CHECK")
			for _, p := range set.All() {
				fmt.Fprintf(tw, "%s\t%s\t%g/%g %%\t%g/%g %%\t%g/%g\t%.0f %%\t%s\n",
					p.Name, p.Label,
					p.LowZDropWarn, p.LowZDropErr,
					p.CVDropWarn, p.CVDropErr,
					p.DFWarn, p.DFErr,
					p.HeadroomWarn*100,
					util.FormatFrequency(p.HFCheckHz),
				)
			}
			return tw.Flush()
		},
	}
}
