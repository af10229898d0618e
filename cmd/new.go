package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edp1096/spkline/pkg/project"
)

func newNewCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "new <project>",
		Short: "Create an empty project with the configured calculation settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if name == "" {
				name = path
			}
			p := project.New(name)
			p.Settings = a.cfg.Calculation
			if a.profile != "" {
				p.Settings.QualityProfile = a.profile
			}
			if err := p.Save(path); err != nil {
				return err
			}
			fmt.Printf("Created %s (%s)\n", path, p.Info.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name (default: the file name)")
	return cmd
}
