package detect

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// PatternInfo stores a compiled pattern and its metadata
type PatternInfo struct {
	Regex       *regexp.Regexp
	Label       string
	Description string
}

// Built-in patterns for structured PII. Labels follow the uppercase
// placeholder convention, so an accepted email span becomes <EMAIL_1>.
//
// The PHONE pattern is deliberately loose about separators; Go's regexp
// has no lookbehind, so unlike some engines it cannot exclude matches
// preceded by a word character and accepts a slightly wider window.
var builtinPatterns = map[string]PatternInfo{
	"email": {
		Regex:       regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		Label:       "EMAIL",
		Description: "Email address",
	},
	"phone": {
		Regex:       regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?\(?\d{2,4}\)?[-.\s]?\d{2,4}[-.\s]?\d{2,4}\b`),
		Label:       "PHONE",
		Description: "Phone number (international-friendly, locale-agnostic)",
	},
	"iban": {
		Regex:       regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{4}\d{7}(?:[A-Z0-9]?){0,16}\b`),
		Label:       "IBAN",
		Description: "International Bank Account Number",
	},
	"ssn_us": {
		Regex:       regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		Label:       "SSN",
		Description: "US Social Security Number",
	},
	"credit_card": {
		Regex:       regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`),
		Label:       "CREDIT_CARD",
		Description: "Credit card number",
	},
	"ip_address": {
		Regex:       regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
		Label:       "IP_ADDRESS",
		Description: "IPv4 address",
	},
}

// PatternSetMetadata contains information about a pattern set file
type PatternSetMetadata struct {
	// Version of the pattern set
	Version string `yaml:"version"`

	// When the pattern set was created
	CreatedAt time.Time `yaml:"created_at"`

	// Last modification time
	UpdatedAt time.Time `yaml:"updated_at"`

	// Description of the pattern set
	Description string `yaml:"description"`

	// Author of the pattern set
	Author string `yaml:"author"`

	// Hash of the file content for integrity verification
	Hash string `yaml:"hash,omitempty"`
}

// PatternEntry is one named regex in a pattern set
type PatternEntry struct {
	// Unique identifier for the entry
	ID string `yaml:"id"`

	// Label emitted into placeholders for matches of this pattern
	Label string `yaml:"label"`

	// Regex pattern to match
	Pattern string `yaml:"pattern"`

	// Description of the entry
	Description string `yaml:"description,omitempty"`
}

// PatternSet defines a complete, loadable detection pattern configuration
type PatternSet struct {
	// Metadata about the pattern set
	Metadata PatternSetMetadata `yaml:"metadata"`

	// Patterns contained in the set
	Patterns []PatternEntry `yaml:"patterns"`
}

// LoadPatternSet reads a YAML pattern set file and unmarshals it
func LoadPatternSet(path string) (*PatternSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern set file: %w", err)
	}

	var set PatternSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse pattern set: %w", err)
	}

	if err := validatePatternSet(&set); err != nil {
		return nil, fmt.Errorf("invalid pattern set: %w", err)
	}

	// Hash for integrity checking
	set.Metadata.Hash = calculatePatternSetHash(data)

	// Ensure all entries have IDs
	for i := range set.Patterns {
		if set.Patterns[i].ID == "" {
			set.Patterns[i].ID = fmt.Sprintf("pattern-%d", i+1)
		}
	}

	return &set, nil
}

// SavePatternSet saves a pattern set to a YAML file
func SavePatternSet(set *PatternSet, path string) error {
	set.Metadata.UpdatedAt = time.Now()

	data, err := yaml.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal pattern set: %w", err)
	}

	set.Metadata.Hash = calculatePatternSetHash(data)

	// Re-marshal with the updated hash
	data, err = yaml.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to re-marshal pattern set with hash: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write pattern set file: %w", err)
	}

	return nil
}

// Compile compiles every entry in the set into PatternInfo values keyed
// by entry ID
func (ps *PatternSet) Compile() (map[string]PatternInfo, error) {
	compiled := make(map[string]PatternInfo, len(ps.Patterns))

	for _, entry := range ps.Patterns {
		re, err := regexp.Compile(entry.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern '%s': %w", entry.ID, err)
		}

		compiled[entry.ID] = PatternInfo{
			Regex:       re,
			Label:       entry.Label,
			Description: entry.Description,
		}
	}

	return compiled, nil
}

// validatePatternSet checks if a pattern set is valid
func validatePatternSet(set *PatternSet) error {
	for i, entry := range set.Patterns {
		if entry.Label == "" {
			return fmt.Errorf("pattern %d has no label", i)
		}

		if entry.Pattern == "" {
			return fmt.Errorf("pattern %d has no pattern", i)
		}

		if _, err := regexp.Compile(entry.Pattern); err != nil {
			return fmt.Errorf("pattern %d does not compile: %w", i, err)
		}
	}

	return nil
}

// calculatePatternSetHash generates a hash of the file content for
// integrity checking
func calculatePatternSetHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
