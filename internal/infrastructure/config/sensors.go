package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SensorEntry is one line of the sensors section: "Display Name@Location": "C4:7C:8D:..".
type SensorEntry struct {
	// Key is the raw mapping key, "name" or "name@location".
	Key string

	// Address is the hardware address exactly as written in the file.
	Address string
}

// Sensors is the ordered sensors section.
//
// A plain map would lose the file order, which is observable in the generated
// item file, so the section is decoded from the yaml.Node directly.
type Sensors []SensorEntry

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Sensors) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("sensors: line %d: expected a mapping of name to address", node.Line)
	}

	entries := make(Sensors, 0, len(node.Content)/2)
	seen := make(map[string]int, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		if keyNode.Kind != yaml.ScalarNode || valueNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("sensors: line %d: name and address must be plain strings", keyNode.Line)
		}
		if first, dup := seen[keyNode.Value]; dup {
			return fmt.Errorf("sensors: line %d: %q already defined on line %d", keyNode.Line, keyNode.Value, first)
		}
		seen[keyNode.Value] = keyNode.Line

		entries = append(entries, SensorEntry{
			Key:     keyNode.Value,
			Address: valueNode.Value,
		})
	}

	*s = entries
	return nil
}
