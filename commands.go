package oem7

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultInitCommands returns the minimal OEM7 sequence that works on
// all tested receiver variants: silence the port, then enable a small
// fixed set of periodic NMEA logs.
func DefaultInitCommands() []string {
	return []string{
		"UNLOGALL THISPORT",
		"LOG GPGGA ONTIME 1",
		"LOG GPGSA ONTIME 1",
		"LOG GPGSV ONTIME 1",
		"LOG GPRMC ONTIME 1",
	}
}

// LoadCommandFile extracts ordered command strings from a YAML file.
// Both a plain list and the driver config shape (mappings holding
// lists of quoted commands) are accepted: every scalar inside a
// sequence contributes one command, in document order.
func LoadCommandFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var cmds []string
	collectSequenceScalars(&root, &cmds)
	return cmds, nil
}

func collectSequenceScalars(n *yaml.Node, out *[]string) {
	if n.Kind == yaml.SequenceNode {
		for _, c := range n.Content {
			if c.Kind == yaml.ScalarNode {
				if cmd := strings.TrimSpace(c.Value); cmd != "" {
					*out = append(*out, cmd)
				}
				continue
			}
			collectSequenceScalars(c, out)
		}
		return
	}
	for _, c := range n.Content {
		collectSequenceScalars(c, out)
	}
}

// LoadCommandSequence aggregates command files and user extras into a
// single ordered sequence. Missing files are skipped silently since
// installations ship different subsets of the config files. Adjacent
// duplicates are collapsed; repeats from separate sources survive
// when not adjacent.
func LoadCommandSequence(paths []string, extra []string) ([]string, error) {
	var seq []string
	for _, p := range paths {
		cmds, err := LoadCommandFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		seq = append(seq, cmds...)
	}
	seq = append(seq, extra...)
	return DedupeAdjacent(seq), nil
}

// DedupeAdjacent collapses consecutive duplicate commands while
// preserving order.
func DedupeAdjacent(cmds []string) []string {
	deduped := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		if len(deduped) == 0 || deduped[len(deduped)-1] != cmd {
			deduped = append(deduped, cmd)
		}
	}
	return deduped
}
