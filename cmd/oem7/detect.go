package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	oem7 "github.com/navtools/go-oem7"
)

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Scan serial ports for a responding receiver, then stream it",
	Long: `Scan the candidate device paths and baud rates until a receiver is
found, show a sample of the captured traffic, then initialize the
receiver and stream its sentences until interrupted.

Candidates are probed passively first; a device already producing
sentence traffic is never sent any commands. Silent devices get the
standard initialization sequence and a second, longer listen window.

Example usage:
  oem7 detect
  oem7 detect --scan-only
  oem7 detect --pattern '/dev/ttyACM*' --nmea-only`,
	Run: func(cmd *cobra.Command, args []string) {
		scanOnly, _ := cmd.Flags().GetBool("scan-only")
		nmeaOnly, _ := cmd.Flags().GetBool("nmea-only")
		patterns, _ := cmd.Flags().GetStringArray("pattern")

		log := newLogger()
		defer log.Sync()

		cfg := oem7.DefaultConfig()
		if len(patterns) > 0 {
			if err := oem7.WithPatterns(patterns...)(&cfg); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		fmt.Println("Scanning serial ports for GPS data...")

		d := oem7.NewDiscoverer(cfg, log)
		res, err := d.Discover()
		if err != nil {
			if errors.Is(err, oem7.ErrNoDeviceDetected) {
				fmt.Println("No GPS device detected. Ensure it is connected and accessible.")
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true)
		fmt.Printf("%s Detected GPS on %s @ %d baud\n", successStyle.Render("✓"), res.Path, res.Baud)

		printSample(res.Captured)

		if scanOnly {
			res.Port.Close()
			return
		}

		proto := oem7.NewProtocol(res.Port, log)
		if err := proto.SendSequence(cfg.InitCommands, cfg.ResponseTimeout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			res.Port.Close()
			os.Exit(1)
		}
		// Drop any immediate binary burst before the streaming loop.
		res.Port.FlushInput()

		fmt.Printf("Streaming data from %s at %d baud. Press Ctrl+C to stop.\n", res.Path, res.Baud)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sess := oem7.NewSession(res.Port, func(line string) {
			fmt.Println(line)
		}, nmeaOnly, log)
		if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().Bool("scan-only", false, "Report the detected port and exit without streaming")
	detectCmd.Flags().Bool("nmea-only", false, "Print only sentence-like lines (prefix $ or <)")
	detectCmd.Flags().StringArray("pattern", nil, "Device path glob to scan (can be repeated)")
}

// printSample shows the traffic captured during the matching probe
func printSample(captured []byte) {
	text := strings.TrimSpace(decodeSample(captured))
	if text == "" {
		return
	}
	fmt.Println("--- Sample data ---")
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Println(line)
		}
	}
	fmt.Println("--- End sample ---")
}

func decodeSample(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c < 0x80 {
			sb.WriteByte(c)
		} else {
			sb.WriteRune('�')
		}
	}
	return sb.String()
}
