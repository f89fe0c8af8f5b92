package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	oem7 "github.com/navtools/go-oem7"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Send OEM7 initialization commands over a serial port",
	Long: `Play back an ordered sequence of OEM7 ASCII commands to a receiver
on an explicitly named serial port.

The sequence is aggregated from YAML command files plus any extra
commands given on the command line; consecutive duplicates are
collapsed. Without command files the built-in minimal sequence is
used. Commands are sent strictly one at a time, each followed by a
bounded wait for the first reply line.

Example usage:
  oem7 init --port /dev/ttyUSB1
  oem7 init --port /dev/ttyUSB0 --baud 9600 --timeout 2s
  oem7 init --command-file std_init_commands.yaml --extra-command "LOG BESTPOSA ONTIME 1"
  oem7 init --list-only --command-file std_init_commands.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		portPath := stringSetting(cmd, "port", "port")
		baud := intSetting(cmd, "baud", "baud")
		timeout := durationSetting(cmd, "timeout", "timeout")
		files, _ := cmd.Flags().GetStringArray("command-file")
		extras, _ := cmd.Flags().GetStringArray("extra-command")
		listOnly, _ := cmd.Flags().GetBool("list-only")

		if len(files) == 0 {
			files = viper.GetStringSlice("command_files")
		}

		log := newLogger()
		defer log.Sync()

		cmds, err := resolveCommands(files, extras)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Resolved %d commands.\n", len(cmds))
		if listOnly {
			for i, c := range cmds {
				fmt.Printf("[%02d] %s\n", i+1, c)
			}
			return
		}

		if err := playSequence(portPath, baud, timeout, cmds, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringP("port", "p", "/dev/ttyUSB1", "Serial device path")
	initCmd.Flags().IntP("baud", "b", 115200, "Baud rate to configure")
	initCmd.Flags().DurationP("timeout", "t", 1500*time.Millisecond, "Response timeout per command")
	initCmd.Flags().StringArray("command-file", nil, "YAML file to parse for command strings (can be repeated)")
	initCmd.Flags().StringArray("extra-command", nil, "Extra command to append to the sequence (can be repeated)")
	initCmd.Flags().Bool("list-only", false, "Print the resolved command sequence without sending anything")
}

// resolveCommands aggregates files and extras, falling back to the
// built-in sequence when nothing else was supplied.
func resolveCommands(files, extras []string) ([]string, error) {
	if len(files) == 0 {
		return oem7.DedupeAdjacent(append(oem7.DefaultInitCommands(), extras...)), nil
	}

	cmds, err := oem7.LoadCommandSequence(files, extras)
	if err != nil {
		return nil, err
	}
	if len(cmds) == 0 {
		return nil, fmt.Errorf("%w from: %v", oem7.ErrNoCommands, files)
	}
	return cmds, nil
}

// playSequence opens the explicitly requested port and plays the
// commands. Unlike discovery probing, a failure to open here is a
// hard failure: the caller named this device.
func playSequence(portPath string, baud int, timeout time.Duration, cmds []string, log *zap.SugaredLogger) error {
	port, err := oem7.Open(portPath,
		oem7.WithBaudRate(baud),
		oem7.WithResponseTimeout(timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", portPath, err)
	}
	defer func() {
		port.Close()
		log.Infof("closed %s", portPath)
	}()

	infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	fmt.Printf("%s Opened %s at %d baud\n", infoStyle.Render("⚡"), portPath, baud)

	proto := oem7.NewProtocol(port, log)
	return proto.SendSequence(cmds, timeout)
}
