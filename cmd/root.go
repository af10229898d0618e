package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edp1096/spkline/internal/config"
	"github.com/edp1096/spkline/internal/logger"
	"github.com/edp1096/spkline/internal/store"
	"github.com/edp1096/spkline/pkg/analysis"
	"github.com/edp1096/spkline/pkg/catalog"
	"github.com/edp1096/spkline/pkg/network"
	"github.com/edp1096/spkline/pkg/project"
)

// app carries the state shared by every subcommand.
type app struct {
	cfgPath  string
	dbPath   string
	logMode  string
	logLevel string
	profile  string

	cfg *config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "spkline",
		Short:        "Loudspeaker wiring network calculator",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "config file (default ./spkline.yaml)")
	pf.StringVar(&a.dbPath, "db", "", "sqlite device library (overrides database.path)")
	pf.StringVar(&a.logMode, "log-mode", "", "dev or prod (overrides log.mode)")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&a.profile, "profile", "", "quality profile (overrides the project setting)")

	root.AddCommand(
		newNewCmd(a),
		newCalcCmd(a),
		newVerifyCmd(a),
		newSuggestCmd(a),
		newServeCmd(a),
		newDBCmd(a),
		newProfilesCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database.Path = a.dbPath
	}
	if flags.Changed("log-mode") {
		cfg.Log.Mode = a.logMode
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

// openStore opens the configured device library, seeding it on first use.
func (a *app) openStore() (*store.Store, error) {
	if a.cfg.Database.Path == "" {
		return nil, fmt.Errorf("no device library configured (use --db or database.path)")
	}
	s, err := store.Open(a.cfg.Database.Path, a.log)
	if err != nil {
		return nil, err
	}
	if _, err := s.Seed(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// library returns the configured device library, or the built-in database
// when none is configured.
func (a *app) library() (*catalog.Database, error) {
	if a.cfg.Database.Path == "" {
		return catalog.Default(), nil
	}
	s, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Load()
}

func (a *app) engine(opts ...analysis.Option) (*analysis.Engine, error) {
	profiles, err := a.cfg.ProfileSet()
	if err != nil {
		return nil, err
	}
	opts = append([]analysis.Option{analysis.WithLogger(a.log)}, opts...)
	return analysis.NewEngine(profiles, opts...), nil
}

// loadProject reads a project and assembles its recompute input.
func (a *app) loadProject(path string) (*project.Project, analysis.Input, error) {
	p, err := project.Load(path)
	if err != nil {
		return nil, analysis.Input{}, err
	}
	if a.profile != "" {
		p.Settings.QualityProfile = a.profile
	}
	library, err := a.library()
	if err != nil {
		return nil, analysis.Input{}, err
	}
	if err := p.SyncRack(library); err != nil {
		a.log.Warn("rack assignment conflicts", "error", err)
	}
	return p, p.Input(library), nil
}

// topologyOf infers the topology from a node id prefix.
func topologyOf(id string) network.Topology {
	if strings.HasPrefix(id, network.ConstantVoltage.Prefix()+"-") {
		return network.ConstantVoltage
	}
	return network.LowZ
}
