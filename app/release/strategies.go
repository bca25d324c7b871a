package release

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// ItemStrategy describes one known shape of the listing markup. Selector
// lists are tried in order and the first non-empty match wins.
type ItemStrategy struct {
	Name  string   `yaml:"name"`
	Item  string   `yaml:"item"`
	Title []string `yaml:"title"`
	Link  []string `yaml:"link"`
	Image []string `yaml:"image"`
	Meta  []string `yaml:"meta"`
}

// DetailStrategy locates the category list on a release's own page.
type DetailStrategy struct {
	Meta []string `yaml:"meta"`
	Tags []string `yaml:"tags"`
}

type Strategies struct {
	Items  []ItemStrategy `yaml:"items"`
	Detail DetailStrategy `yaml:"detail"`
}

// DefaultStrategies covers the listing layouts nodata.tv has used so far,
// newest first.
func DefaultStrategies() *Strategies {
	return &Strategies{
		Items: []ItemStrategy{
			{
				Name:  "grid",
				Item:  "article.post",
				Title: []string{"h2.entry-title", "h2.post-title", "h2"},
				Link:  []string{"h2 a[href]", "a[rel~=bookmark]", "a.post-thumbnail", "a[href]"},
				Image: []string{".post-thumbnail img", "img"},
				Meta:  []string{".entry-meta", ".post-meta", "time", ".entry-date"},
			},
			{
				Name:  "article",
				Item:  "article",
				Title: []string{"h2", "h3", ".title"},
				Link:  []string{"h2 a[href]", "h3 a[href]", "a[href]"},
				Image: []string{"img"},
				Meta:  []string{".meta", "time", ".date"},
			},
			{
				Name:  "legacy",
				Item:  "div.post",
				Title: []string{".post-title", "h2", "h3"},
				Link:  []string{".post-title a[href]", "a[href]"},
				Image: []string{"img"},
				Meta:  []string{".postmetadata", ".date", "small"},
			},
		},
		Detail: DetailStrategy{
			Meta: []string{".entry-meta", ".post-meta", "footer.entry-footer", ".postmetadata", "ul.post-categories"},
			Tags: []string{`a[rel~="tag"]`, `a[href*="/category/"]`, `a[href*="/tag/"]`},
		},
	}
}

// LoadStrategies reads selector strategies from a YAML file. An empty path
// or a missing file yields the defaults.
func LoadStrategies(path string) (*Strategies, error) {
	if path == "" {
		return DefaultStrategies(), nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Debug("Strategies file not found, using defaults", "path", path)
		return DefaultStrategies(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var strategies Strategies
	if err := yaml.Unmarshal(data, &strategies); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	defaults := DefaultStrategies()
	if len(strategies.Items) == 0 {
		strategies.Items = defaults.Items
	}
	if len(strategies.Detail.Meta) == 0 {
		strategies.Detail.Meta = defaults.Detail.Meta
	}
	if len(strategies.Detail.Tags) == 0 {
		strategies.Detail.Tags = defaults.Detail.Tags
	}

	if err := strategies.Validate(); err != nil {
		return nil, fmt.Errorf("invalid strategies %s: %w", path, err)
	}

	return &strategies, nil
}

func (s *Strategies) Validate() error {
	if s == nil {
		return fmt.Errorf("strategies are nil")
	}

	for i, item := range s.Items {
		if item.Item == "" {
			return fmt.Errorf("item selector is required at index %d", i)
		}
		if len(item.Title) == 0 {
			return fmt.Errorf("strategy at index %d must have at least one title selector", i)
		}
	}

	return nil
}
