// Package cfg provides configuration and command-line interface setup for Playlistarr.
package cfg

import (
	"context"
	"fmt"
	"strings"

	"playlistarr/internal/app"
	"playlistarr/internal/contracts"
	"playlistarr/internal/domain/keys"
	"playlistarr/internal/events"
	"playlistarr/internal/file"
	"playlistarr/internal/utils/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "playlistarr",
	Short: "Playlistarr is a playlist downloading and archiving tool.",

	// Errors reach the caller once, main prints them.
	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile, err := cmd.Flags().GetString(keys.ConfigFile); err == nil && cfgFile != "" {
			if err := applyConfigFile(cmd, cfgFile); err != nil {
				return fmt.Errorf("failed loading config file: %w", err)
			}
		}
		setLogLevel(cmd)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// InitCommands initializes all commands and their flags.
func InitCommands(ctx context.Context, s contracts.Store, coord *app.Coordinator, bus *events.Bus) error {

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("_", "-")) // Convert "output_dir" to "output-dir"

	if err := initProgramFlags(rootCmd); err != nil {
		return err
	}

	rootCmd.AddCommand(downloadCmd(ctx, coord))
	rootCmd.AddCommand(listCmd(ctx, coord))
	rootCmd.AddCommand(historyCmd(s))
	rootCmd.AddCommand(serveCmd(ctx, s, coord, bus))

	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// initProgramFlags initializes persistent program level flags.
func initProgramFlags(rootCmd *cobra.Command) error {

	// Debug level
	rootCmd.PersistentFlags().Int(keys.DebugLevel, 0, "Debugging level (0 - 5)")
	if err := viper.BindPFlag(keys.DebugLevel, rootCmd.PersistentFlags().Lookup(keys.DebugLevel)); err != nil {
		return err
	}

	// Config file holding flag defaults
	rootCmd.PersistentFlags().String(keys.ConfigFile, "", "Config file holding default flag values")
	if err := viper.BindPFlag(keys.ConfigFile, rootCmd.PersistentFlags().Lookup(keys.ConfigFile)); err != nil {
		return err
	}

	return nil
}

// setLogLevel clamps the debug flag into the logging level.
func setLogLevel(cmd *cobra.Command) {
	dLevel, err := cmd.Flags().GetInt(keys.DebugLevel)
	if err != nil {
		return
	}

	switch {
	case dLevel <= 0:
		logging.Level = 0
	case dLevel >= 5:
		logging.Level = 5
	default:
		logging.Level = dLevel
	}
}

// applyConfigFile loads config file values into every flag of cmd the user
// did not set explicitly. Explicit flags always win over the file.
func applyConfigFile(cmd *cobra.Command, path string) error {
	v := viper.New()
	if err := file.LoadConfigFile(v, path); err != nil {
		return err
	}

	var setErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := f.Value.Set(v.GetString(f.Name)); err != nil && setErr == nil {
			setErr = fmt.Errorf("config file key %q: %w", f.Name, err)
		}
	})
	return setErr
}
