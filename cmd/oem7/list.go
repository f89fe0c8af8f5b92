package main

import (
	"fmt"
	"os"

	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"

	oem7 "github.com/navtools/go-oem7"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidate serial ports",
	Long: `List the serial device nodes a receiver can plausibly appear on:
USB serial adapters (ttyUSB*), USB CDC/ACM devices (ttyACM*), ARM
serial ports (ttyAMA*) and standard serial ports (ttyS*).

Example usage:
  oem7 list
  oem7 list --table`,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := oem7.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		if len(ports) == 0 {
			fmt.Println("No serial ports found")
			return
		}

		tableFormat, _ := cmd.Flags().GetBool("table")
		if tableFormat {
			renderPortTable(ports)
			return
		}
		for _, p := range ports {
			fmt.Println(p)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

const (
	columnKeyPort = "port"
	columnKeyType = "type"
	columnKeyDesc = "description"
)

// renderPortTable shows the ports in a static styled table
func renderPortTable(ports []string) {
	fmt.Printf("Found %d serial port(s):\n\n", len(ports))

	rows := make([]table.Row, 0, len(ports))
	for _, p := range ports {
		info := oem7.GetPortInfo(p)
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyPort: info.Name,
			columnKeyType: info.Path,
			columnKeyDesc: info.Description,
		}))
	}

	t := table.New([]table.Column{
		table.NewColumn(columnKeyPort, "Port", 14),
		table.NewColumn(columnKeyType, "Path", 20),
		table.NewColumn(columnKeyDesc, "Description", 26),
	}).WithRows(rows)

	fmt.Println(t.View())
}
