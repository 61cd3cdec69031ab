package detect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// NERServerConfig holds configuration for connecting to a NER server
type NERServerConfig struct {
	// Path to the NER server executable
	Path string

	// Transport type: only "stdio" is supported
	Transport string

	// Additional connection options passed to the server environment
	Options map[string]interface{}
}

// NERConfig holds configuration for NER detection calls
type NERConfig struct {
	ToolName        string            // The MCP tool name to call
	Models          map[string]string // Language selector to model identifier
	DefaultLanguage string            // Fallback for unsupported selectors
	Timeout         time.Duration     // Context timeout per call
	RetryCount      int               // Number of retries on failure
	RetryBackoff    time.Duration     // Backoff duration between retries

	RateLimitEnabled  bool // Enable rate limiting of server calls
	RequestsPerMinute int  // Max calls per minute (for rate limiting)
}

// DiscoverNERServers tries to discover available NER servers using
// environment variables and common installation locations
func DiscoverNERServers() ([]NERServerConfig, error) {
	servers := []NERServerConfig{}

	if serverPath := os.Getenv("NER_SERVER_PATH"); serverPath != "" {
		servers = append(servers, NERServerConfig{
			Path:      serverPath,
			Transport: "stdio",
		})
	}

	commonPaths := []string{
		"./ner-server",
		filepath.Join(os.Getenv("HOME"), ".local/bin/ner-server"),
		"/usr/local/bin/ner-server",
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			servers = append(servers, NERServerConfig{
				Path:      path,
				Transport: "stdio",
			})
		}
	}

	// NER_SERVERS holds a comma-separated list of executables
	if serverList := os.Getenv("NER_SERVERS"); serverList != "" {
		for _, server := range strings.Split(serverList, ",") {
			server = strings.TrimSpace(server)
			if server == "" {
				continue
			}
			servers = append(servers, NERServerConfig{
				Path:      server,
				Transport: "stdio",
			})
		}
	}

	if len(servers) == 0 {
		return nil, fmt.Errorf("no NER servers discovered; please set NER_SERVER_PATH or NER_SERVERS environment variable")
	}

	return servers, nil
}

// GetNERServerConfig returns an appropriate NER server configuration.
// An explicit serverPath takes precedence over discovery.
func GetNERServerConfig(serverPath string) (*NERServerConfig, error) {
	if serverPath != "" {
		return &NERServerConfig{
			Path:      serverPath,
			Transport: "stdio",
		}, nil
	}

	servers, err := DiscoverNERServers()
	if err != nil {
		return nil, err
	}

	return &servers[0], nil
}

// LoadNERConfig fills in defaults for any missing configuration values.
// Explicitly provided values always take precedence over environment
// variables and defaults.
func LoadNERConfig(config *NERConfig) *NERConfig {
	if config == nil {
		config = &NERConfig{}
	}

	if config.ToolName == "" {
		config.ToolName = "ner.detect"
		if toolName := os.Getenv("NER_TOOL_NAME"); toolName != "" {
			config.ToolName = toolName
		}
	}

	if config.Models == nil {
		// Defaults mirror the reference deployment: a robust English
		// baseline plus a CamemBERT variant for French.
		config.Models = map[string]string{
			"en": "dslim/bert-base-NER",
			"fr": "Jean-Baptiste/camembert-ner",
		}
	}

	if config.DefaultLanguage == "" {
		config.DefaultLanguage = "en"
	}

	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	if config.RetryCount == 0 {
		config.RetryCount = 2
	}

	if config.RetryBackoff == 0 {
		config.RetryBackoff = 500 * time.Millisecond
	}

	if config.RateLimitEnabled && config.RequestsPerMinute == 0 {
		config.RequestsPerMinute = 60
	}

	return config
}
