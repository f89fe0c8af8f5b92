package oem7

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// listPatterns covers the device nodes a receiver can plausibly
// appear on. Discovery itself only scans the narrower Config.Patterns
// set; this broader list backs the `list` command.
var listPatterns = []string{
	"/dev/ttyUSB*",
	"/dev/ttyACM*",
	"/dev/ttyAMA*",
	"/dev/ttyS*",
}

// ListPorts returns the serial device paths present on the system,
// sorted within each pattern. Only character devices are reported.
func ListPorts() ([]string, error) {
	var ports []string
	for _, pattern := range listPatterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		for _, path := range matches {
			if isCharacterDevice(path) {
				ports = append(ports, path)
			}
		}
	}
	return ports, nil
}

func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// PortInfo describes one candidate device node
type PortInfo struct {
	Name        string
	Path        string
	Description string
}

// GetPortInfo classifies a device path for display
func GetPortInfo(path string) PortInfo {
	name := filepath.Base(path)
	return PortInfo{
		Name:        name,
		Path:        path,
		Description: portDescription(name),
	}
}

func portDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	default:
		return "Serial Port"
	}
}
