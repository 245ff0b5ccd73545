package sources

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yml
var defaultsYAML []byte

// Load reads the source tables from path, or the embedded defaults when
// path is empty.
func Load(path string) (*Sources, error) {
	data := defaultsYAML
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read sources file: %w", err)
		}
		data = fileData
	}

	var s Sources
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse sources YAML: %w", err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid sources config: %w", err)
	}

	return &s, nil
}

func (s *Sources) validate() error {
	if len(s.Interests) == 0 {
		return fmt.Errorf("at least one discipline is required")
	}
	for _, d := range s.Interests {
		if d.Name == "" {
			return fmt.Errorf("discipline name is required")
		}
		for _, t := range d.Topics {
			if t.Label == "" {
				return fmt.Errorf("topic label is required in discipline %q", d.Name)
			}
		}
	}
	for _, tf := range s.Medium.Tags {
		if tf.Name == "" {
			return fmt.Errorf("medium tag name is required")
		}
		if tf.Feed != "" {
			if _, err := url.Parse(tf.Feed); err != nil {
				return fmt.Errorf("medium tag %q has invalid feed URL: %w", tf.Name, err)
			}
		}
	}
	return nil
}

// InterestLabels flattens the discipline groups into the ordered interest
// list the paper fetch job iterates.
func (s *Sources) InterestLabels() []string {
	var labels []string
	for _, d := range s.Interests {
		for _, t := range d.Topics {
			labels = append(labels, t.Label)
		}
	}
	return labels
}

// CategoryFor returns the ArXiv category query for a known interest label.
// Unmapped labels fall back to a free-text all-fields query.
func (s *Sources) CategoryFor(label string) string {
	for _, d := range s.Interests {
		for _, t := range d.Topics {
			if t.Label == label && t.Category != "" {
				return "cat:" + t.Category
			}
		}
	}
	return fmt.Sprintf("all:%q", label)
}

// TagNames returns the ordered Medium tag set.
func (s *Sources) TagNames() []string {
	names := make([]string, 0, len(s.Medium.Tags))
	for _, tf := range s.Medium.Tags {
		names = append(names, tf.Name)
	}
	return names
}

// FeedURLFor resolves a tag to its feed endpoint. Tags outside the table get
// the templated per-tag feed path with the tag lower-cased.
func (s *Sources) FeedURLFor(tag string) string {
	for _, tf := range s.Medium.Tags {
		if tf.Name == tag && tf.Feed != "" {
			return tf.Feed
		}
	}
	return "https://medium.com/feed/tag/" + strings.ToLower(tag)
}
