package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/edp1096/spkline/pkg/devicecsv"
)

func newDBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the sqlite device library",
	}
	cmd.AddCommand(
		newDBSeedCmd(a),
		newDBImportCmd(a),
		newDBExportCmd(a),
		newDBDeleteCmd(a),
	)
	return cmd
}

func newDBSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the library and fill it with the built-in devices if empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			n, err := s.Count()
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d devices\n", a.cfg.Database.Path, n)
			return nil
		},
	}
}

func newDBImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <speakers|cables|amplifiers> <file.csv>",
		Short: "Import or update devices from a CSV table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer file.Close()

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			db, err := s.Load()
			if err != nil {
				return err
			}

			n, err := devicecsv.Import(file, devicecsv.Kind(args[0]), db)
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}
			if err := s.Save(db); err != nil {
				return err
			}
			a.log.Info("devices imported", "table", args[0], "count", n)
			fmt.Printf("Imported %d %s\n", n, args[0])
			return nil
		},
	}
}

func newDBExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <speakers|cables|amplifiers> [file.csv]",
		Short: "Export a device table as CSV",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.library()
			if err != nil {
				return err
			}
			w := io.Writer(os.Stdout)
			if len(args) == 2 {
				file, err := os.Create(args[1])
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			return devicecsv.Export(w, devicecsv.Kind(args[0]), db)
		},
	}
}

func newDBDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <speakers|cables|amplifiers> <id>",
		Short: "Delete one device from the library",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Delete(args[0], args[1])
		},
	}
}
