// Package cmd provides the command-line interface of dtnsim.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sarchlab/dtnsim/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type options struct {
	configFile string
	envFile    string
	viper      *viper.Viper
}

// NewRootCmd creates the dtnsim command with all its subcommands.
func NewRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "dtnsim",
		Short: "dtnsim simulates routing in opportunistic networks.",
		Long: `dtnsim replays a contact trace, lets the nodes exchange messages ` +
			`under a routing protocol and reports delivery statistics. ` +
			`Settings come from a config file, DTNSIM_* environment ` +
			`variables and flags, in increasing priority.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&o.configFile, "config", "",
		"config file (YAML, JSON or TOML)")
	root.PersistentFlags().StringVar(&o.envFile, "env-file", ".env",
		"file of DTNSIM_* variables loaded into the environment")

	root.AddCommand(newRunCmd(o), newValidateCmd(o), newVersionCmd())

	return root
}

// Execute runs the command line and returns the exit status.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}

	return 0
}

func (o *options) load(cmd *cobra.Command) error {
	if err := loadEnvFile(o.envFile, cmd.Flags().Changed("env-file")); err != nil {
		return err
	}

	v, err := config.NewViper(o.configFile)
	if err != nil {
		return err
	}

	for key, name := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}

		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}

	o.viper = v

	return nil
}

// loadEnvFile reads the environment file. A missing file is only an error
// if it was asked for explicitly.
func loadEnvFile(path string, explicit bool) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

func (o *options) settings() (config.Settings, error) {
	s, err := config.Load(o.viper)
	if err != nil {
		return s, err
	}

	if err := s.ConfigureLogging(); err != nil {
		return s, err
	}

	return s, nil
}
