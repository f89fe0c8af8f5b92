package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	oem7 "github.com/navtools/go-oem7"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Initialize a receiver and stream its messages",
	Long: `Open a serial port (explicit, or discovered with --detect), send the
initialization sequence, and print the incoming messages until
interrupted with Ctrl+C.

Example usage:
  oem7 run --port /dev/ttyUSB1
  oem7 run --detect --nmea-only
  oem7 run --port /dev/ttyUSB0 --baud 9600 --no-init
  oem7 run --extra-command "LOG BESTPOSA ONTIME 1"`,
	Run: func(cmd *cobra.Command, args []string) {
		portPath := stringSetting(cmd, "port", "port")
		baud := intSetting(cmd, "baud", "baud")
		timeout := durationSetting(cmd, "timeout", "timeout")
		detect, _ := cmd.Flags().GetBool("detect")
		noInit, _ := cmd.Flags().GetBool("no-init")
		nmeaOnly, _ := cmd.Flags().GetBool("nmea-only")
		if !cmd.Flags().Changed("nmea-only") {
			nmeaOnly = viper.GetBool("nmea_only")
		}
		extras, _ := cmd.Flags().GetStringArray("extra-command")

		log := newLogger()
		defer log.Sync()

		port, err := acquirePort(portPath, baud, detect, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Opened %s at %d baud.\n", port.Path(), port.Baud())

		if noInit {
			log.Infof("skipping initialization as requested")
		} else {
			proto := oem7.NewProtocol(port, log)
			cmds := oem7.DedupeAdjacent(append(oem7.DefaultInitCommands(), extras...))
			if err := proto.SendSequence(cmds, timeout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				port.Close()
				os.Exit(1)
			}
			// Drop any immediate binary burst before streaming.
			port.FlushInput()
		}

		fmt.Println("Streaming messages. Press Ctrl+C to stop.")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sess := oem7.NewSession(port, func(line string) {
			fmt.Println(line)
		}, nmeaOnly, log)
		if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("port", "p", "/dev/ttyUSB1", "Serial device path")
	runCmd.Flags().IntP("baud", "b", 115200, "Baud rate to configure")
	runCmd.Flags().DurationP("timeout", "t", 1500*time.Millisecond, "Response timeout per command")
	runCmd.Flags().Bool("detect", false, "Discover the device path and baud rate instead of using --port")
	runCmd.Flags().Bool("no-init", false, "Skip initialization commands; just stream the port")
	runCmd.Flags().Bool("nmea-only", false, "Print only sentence-like lines (prefix $ or <)")
	runCmd.Flags().StringArray("extra-command", nil, "Additional command to append (can be repeated)")
}

// acquirePort opens the named device, or discovers one. An explicit
// open failure is fatal to the command; discovery exhaustion reports
// the absent device.
func acquirePort(portPath string, baud int, detect bool, log *zap.SugaredLogger) (*oem7.Port, error) {
	if !detect {
		port, err := oem7.Open(portPath, oem7.WithBaudRate(baud))
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", portPath, err)
		}
		return port, nil
	}

	d := oem7.NewDiscoverer(oem7.DefaultConfig(), log)
	res, err := d.Discover()
	if err != nil {
		return nil, err
	}
	return res.Port, nil
}
