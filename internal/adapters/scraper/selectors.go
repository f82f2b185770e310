package scraper

import (
	"fmt"
	"os"
	"sync"
	"time"

	"rethread/pkg/log"

	"gopkg.in/yaml.v3"
)

// Selectors holds the CSS selectors and page markers used to pull a
// status out of rendered Twitter HTML. Twitter reshuffles its markup
// without notice, so the values live in a YAML file that is re-read
// when it changes, no restart needed.
type Selectors struct {
	container   string
	text        string
	unavailable []string

	mu          sync.RWMutex
	lastModTime time.Time
	filePath    string
}

type rawSelectors struct {
	Tweet struct {
		Container string `yaml:"container"`
		Text      string `yaml:"text"`
	} `yaml:"tweet"`
	Unavailable []string `yaml:"unavailable"`
}

// LoadSelectors reads the selector file and starts watching it for edits.
func LoadSelectors(filePath string) (*Selectors, error) {
	s := &Selectors{filePath: filePath}

	if err := s.reload(); err != nil {
		return nil, err
	}

	go s.watch()

	return s, nil
}

func (s *Selectors) reload() error {
	info, err := os.Stat(s.filePath)
	if err != nil {
		return fmt.Errorf("stat selectors file: %w", err)
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return fmt.Errorf("read selectors file: %w", err)
	}

	var raw rawSelectors
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse selectors file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.container = raw.Tweet.Container
	s.text = raw.Tweet.Text
	s.unavailable = raw.Unavailable
	s.lastModTime = info.ModTime()

	log.GlobalDebug("selectors loaded", "path", s.filePath)
	return nil
}

// watch polls the file every 10 seconds and reloads on modification.
func (s *Selectors) watch() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		info, err := os.Stat(s.filePath)
		if err != nil {
			continue
		}

		s.mu.RLock()
		modified := info.ModTime().After(s.lastModTime)
		s.mu.RUnlock()

		if modified {
			if err := s.reload(); err != nil {
				log.GlobalWarn("selectors reload failed", "error", err.Error())
			} else {
				log.GlobalInfo("selectors reloaded", "path", s.filePath)
			}
		}
	}
}

// Container returns the selector for a rendered status block.
func (s *Selectors) Container() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.container
}

// Text returns the selector for the status text node.
func (s *Selectors) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// Unavailable returns the page markers that identify a deleted or
// never-existing status.
func (s *Selectors) Unavailable() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.unavailable))
	copy(out, s.unavailable)
	return out
}
