// Package sources maps topics to feed endpoints: built-in defaults, an optional
// YAML/JSON file, and the NEWS_SOURCES override string.
package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
	"gopkg.in/yaml.v3"
)

// Source aliases domain.Source for callers that only deal with registries.
type Source = domain.Source

// FallbackTopic is served when a topic has no registered sources.
const FallbackTopic = domain.TopicTech

// DefaultSources returns a fresh copy of the built-in topic lists.
func DefaultSources() map[string][]Source {
	return map[string][]Source{
		domain.TopicTech: {
			{Name: "theverge", URL: "https://www.theverge.com/rss/index.xml"},
			{Name: "bbc", URL: "https://feeds.bbci.co.uk/news/technology/rss.xml"},
			{Name: "hackernews", URL: "https://hnrss.org/frontpage"},
		},
		domain.TopicFinance: {
			{Name: "marketwatch-top", URL: "https://www.marketwatch.com/rss/topstories"},
			{Name: "marketwatch-rt", URL: "https://www.marketwatch.com/rss/realtimeheadlines"},
		},
		domain.TopicWorld: {
			{Name: "bbc", URL: "https://feeds.bbci.co.uk/news/world/rss.xml"},
			{Name: "aljazeera", URL: "https://www.aljazeera.com/xml/rss/all.xml"},
		},
	}
}

// Registry is an immutable topic -> sources mapping. Safe for concurrent reads.
type Registry struct {
	topics map[string][]Source
}

// NewRegistry merges layers over the built-in defaults. Later layers replace
// earlier per-topic lists; empty lists are ignored so a topic never ends up empty.
func NewRegistry(layers ...map[string][]Source) *Registry {
	merged := DefaultSources()
	for _, layer := range layers {
		for topic, list := range layer {
			topic = domain.NormalizeTopic(topic)
			if topic == "" || len(list) == 0 {
				continue
			}
			cp := make([]Source, len(list))
			copy(cp, list)
			merged[topic] = cp
		}
	}
	return &Registry{topics: merged}
}

// SourcesByTopic returns the sources for topic, falling back to the tech list.
func (r *Registry) SourcesByTopic(topic string) []Source {
	if r == nil {
		return nil
	}
	list, ok := r.topics[domain.NormalizeTopic(topic)]
	if !ok || len(list) == 0 {
		list = r.topics[FallbackTopic]
	}
	out := make([]Source, len(list))
	copy(out, list)
	return out
}

// Topics returns the registered topic names, sorted.
func (r *Registry) Topics() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.topics))
	for t := range r.topics {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// All returns a deep copy of the registry contents.
func (r *Registry) All() map[string][]Source {
	if r == nil {
		return nil
	}
	out := make(map[string][]Source, len(r.topics))
	for t, list := range r.topics {
		cp := make([]Source, len(list))
		copy(cp, list)
		out[t] = cp
	}
	return out
}

// fileRegistry is the on-disk layout of a sources file.
type fileRegistry struct {
	Topics map[string][]Source `json:"topics" yaml:"topics"`
}

// LoadFile reads a YAML or JSON sources file.
func LoadFile(path string) (map[string][]Source, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sources file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	reg, err := parseFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(reg.Topics) == 0 {
		return nil, errors.New("sources file contains no topics")
	}

	out := make(map[string][]Source, len(reg.Topics))
	for rawTopic, list := range reg.Topics {
		topic := domain.NormalizeTopic(rawTopic)
		if topic == "" {
			return nil, errors.New("sources file contains an empty topic name")
		}
		seen := make(map[string]struct{}, len(list))
		clean := make([]Source, 0, len(list))
		for i, src := range list {
			src = sanitizeSource(src)
			if err := validateSource(src); err != nil {
				return nil, fmt.Errorf("topic %q source[%d]: %w", topic, i, err)
			}
			if _, dup := seen[src.Name]; dup {
				return nil, fmt.Errorf("topic %q: duplicate source name %q", topic, src.Name)
			}
			seen[src.Name] = struct{}{}
			clean = append(clean, src)
		}
		out[topic] = clean
	}
	return out, nil
}

func parseFile(data []byte, ext string) (fileRegistry, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalFile(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return fileRegistry{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func unmarshalFile(name string, data []byte, fn unmarshalFn) (fileRegistry, error) {
	var reg fileRegistry
	if err := fn(data, &reg); err != nil {
		return fileRegistry{}, fmt.Errorf("decode %s sources: %w", name, err)
	}
	return reg, nil
}

func sanitizeSource(s Source) Source {
	s.Name = strings.TrimSpace(s.Name)
	s.URL = strings.TrimSpace(s.URL)
	return s
}

func validateSource(s Source) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.URL == "" {
		return fmt.Errorf("url is required for source %q", s.Name)
	}
	return nil
}
