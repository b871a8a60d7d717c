package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Overrides extends or replaces the built-in scenario tables. Every field is
// optional; entries merge into the defaults keyed by language (and topic for
// greetings), replacing the existing pool for that key.
type Overrides struct {
	// Topics maps topic keys to prompt hints.
	Topics map[string]string `yaml:"topics"`
	// Greetings maps language code to topic to opening lines.
	Greetings map[string]map[string][]string `yaml:"greetings"`
	// Fillers maps language code to thinking fillers.
	Fillers map[string][]string `yaml:"fillers"`
	// Clarifications maps language code to repeat-request phrases.
	Clarifications map[string][]string `yaml:"clarifications"`
	// Encouragements maps language code to praise phrases.
	Encouragements map[string][]string `yaml:"encouragements"`
	// RoleplayOpeners maps language code to roleplay opening lines. Each line
	// must contain exactly one %s placeholder for the scenario description.
	RoleplayOpeners map[string][]string `yaml:"roleplay_openers"`
}

// LoadOverridesFromReader decodes an Overrides document from r. Unknown
// fields are rejected so typos in an overlay file fail loudly.
func LoadOverridesFromReader(r io.Reader) (*Overrides, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var o Overrides
	if err := dec.Decode(&o); err != nil {
		if errors.Is(err, io.EOF) {
			return &Overrides{}, nil
		}
		return nil, fmt.Errorf("decode scenario overrides: %w", err)
	}
	return &o, nil
}

// LoadOverrides reads an overlay file and applies it to the built-in tables.
func LoadOverrides(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open scenario overrides: %w", err)
	}
	defer f.Close()

	o, err := LoadOverridesFromReader(f)
	if err != nil {
		return err
	}
	o.Apply()
	return nil
}

// Apply merges the overrides into the built-in tables. Empty pools are
// ignored so an overlay cannot strand a language without any phrases.
func (o *Overrides) Apply() {
	for topic, hint := range o.Topics {
		if hint != "" {
			topicContext[topic] = hint
		}
	}
	for lang, byTopic := range o.Greetings {
		if topicGreetings[lang] == nil {
			topicGreetings[lang] = make(map[string][]string, len(byTopic))
		}
		for topic, pool := range byTopic {
			if len(pool) > 0 {
				topicGreetings[lang][topic] = pool
			}
		}
	}
	mergePools(thinkingFillers, o.Fillers)
	mergePools(clarifications, o.Clarifications)
	mergePools(encouragements, o.Encouragements)
	mergePools(roleplayOpeners, o.RoleplayOpeners)
}

func mergePools(dst, src map[string][]string) {
	for lang, pool := range src {
		if len(pool) > 0 {
			dst[lang] = pool
		}
	}
}
