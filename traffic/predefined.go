package traffic

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Predefined reads the messages from a YAML file:
//
//	messages:
//	  - {time: 12.0, source: 0, destination: 1}
type Predefined struct {
	path  string
	nodes int
	load  int
}

type predefinedFile struct {
	Messages []Message `yaml:"messages"`
}

// Name returns "predefined".
func (g *Predefined) Name() string { return "predefined" }

// Generate loads and validates the messages. A load of 0 accepts any number
// of messages.
func (g *Predefined) Generate() ([]Message, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		return nil, fmt.Errorf("reading traffic file: %w", err)
	}

	var f predefinedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", g.path, err)
	}

	if g.load > 0 && len(f.Messages) > g.load {
		return nil, fmt.Errorf("%s has %d messages, more than the load %d",
			g.path, len(f.Messages), g.load)
	}

	for i, m := range f.Messages {
		switch {
		case m.Time < 0:
			return nil, fmt.Errorf("%s: message %d: negative time", g.path, i)
		case m.Source < 0 || int(m.Source) >= g.nodes:
			return nil, fmt.Errorf("%s: message %d: source %d not in [0, %d)",
				g.path, i, m.Source, g.nodes)
		case m.Destination < 0 || int(m.Destination) >= g.nodes:
			return nil, fmt.Errorf("%s: message %d: destination %d not in [0, %d)",
				g.path, i, m.Destination, g.nodes)
		case m.Source == m.Destination:
			return nil, fmt.Errorf("%s: message %d: source equals destination",
				g.path, i)
		}
	}

	sortByTime(f.Messages)

	return f.Messages, nil
}
