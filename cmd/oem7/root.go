package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "oem7",
	Short: "Configure and stream NovAtel OEM7 GPS receivers over serial",
	Long: `oem7 talks to NovAtel OEM7-class GPS receivers on USB serial links.

It can scan for a receiver when the device path and baud rate are
unknown, play back initialization command sequences, and stream the
incoming sentences to the terminal or a live TUI.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.oem7.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// initConfig reads in the config file and OEM7_* environment variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".oem7")
	}

	viper.SetEnvPrefix("OEM7")
	viper.AutomaticEnv()

	viper.SetDefault("port", "/dev/ttyUSB1")
	viper.SetDefault("baud", 115200)
	viper.SetDefault("timeout", "1.5s")
	viper.SetDefault("nmea_only", false)
	viper.SetDefault("command_files", []string{})

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// Settings resolve as: explicit flag, then config file / environment,
// then the flag default (kept in sync with the viper defaults above).

func stringSetting(cmd *cobra.Command, name, key string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return viper.GetString(key)
}

func intSetting(cmd *cobra.Command, name, key string) int {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	return viper.GetInt(key)
}

func durationSetting(cmd *cobra.Command, name, key string) time.Duration {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetDuration(name)
		return v
	}
	return viper.GetDuration(key)
}

// newLogger builds the logger shared by the subcommands
func newLogger() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		os.Exit(1)
	}
	return logger.Sugar()
}
