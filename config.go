package requesty

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"gopkg.in/yaml.v3"
)

const (
	defaultAppName = "myApp"
	defaultTimeout = 5 * time.Second
)

// ClientConfig is the construction-time configuration of a Client.
type ClientConfig struct {
	BaseURL        string
	AppName        string
	ResponseFormat ResponseFormat
	Headers        map[string]string
	// Timeout bounds each attempt. Zero selects the default at construction;
	// use WithTimeout(0) to run without a timer.
	Timeout time.Duration
	// Retry is the number of extra attempts after the first.
	Retry int
	Debug bool
}

// DefaultConfig returns the defaults applied to every client.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		AppName:        defaultAppName,
		ResponseFormat: FormatJSON,
		Headers:        map[string]string{},
		Timeout:        defaultTimeout,
		Retry:          0,
		Debug:          false,
	}
}

// clone copies the config so the caller's header map stays private.
func (cfg ClientConfig) clone() ClientConfig {
	headers := make(map[string]string, len(cfg.Headers))
	for key, value := range cfg.Headers {
		headers[key] = value
	}
	cfg.Headers = headers
	return cfg
}

// Validate returns every problem found in the configuration.
func (cfg ClientConfig) Validate() []string {
	var problems []string

	if cfg.BaseURL == "" {
		problems = append(problems, "baseURL is required")
	} else if parsed, err := url.Parse(cfg.BaseURL); err != nil {
		problems = append(problems, fmt.Sprintf("baseURL is invalid: %v", err))
	} else if parsed.Scheme == "" || parsed.Host == "" {
		problems = append(problems, "baseURL must be absolute")
	}

	switch cfg.ResponseFormat {
	case FormatJSON, FormatText:
	default:
		problems = append(problems, fmt.Sprintf("responseFormat %q is not json or text", cfg.ResponseFormat))
	}

	if cfg.Timeout < 0 {
		problems = append(problems, "timeout must be non-negative")
	}
	if cfg.Timeout > 10*time.Minute {
		problems = append(problems, "timeout > 10m may cause calls to hang for too long")
	}

	if cfg.Retry < 0 {
		problems = append(problems, "retry must be non-negative")
	}
	if cfg.Retry > 100 {
		problems = append(problems, "retry > 100 may cause excessive resource usage")
	}

	return problems
}

// fileConfig mirrors the keys accepted in a YAML config file. Pointer
// fields distinguish "absent" from zero so defaults survive.
type fileConfig struct {
	BaseURL        string            `yaml:"base_url"`
	AppName        string            `yaml:"app_name"`
	DataConversion ResponseFormat    `yaml:"data_conversion"`
	Headers        map[string]string `yaml:"headers"`
	Timeout        *yamlDuration     `yaml:"timeout"`
	Retry          *int              `yaml:"retry"`
	Debug          *bool             `yaml:"debug"`
}

// yamlDuration accepts Go duration syntax ("750ms") or a bare integer
// number of milliseconds.
type yamlDuration time.Duration

func (d *yamlDuration) UnmarshalYAML(node *yaml.Node) error {
	value := strings.TrimSpace(node.Value)
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		*d = yamlDuration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return errors.Wrapf(err, "line %d: invalid duration %q", node.Line, value)
	}
	*d = yamlDuration(parsed)
	return nil
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
func LoadConfig(path string) (ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ClientConfig{}, errors.Wrap(err, "failed to read config file")
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration on top of DefaultConfig and
// validates the result.
func ParseConfig(data []byte) (ClientConfig, error) {
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return ClientConfig{}, errors.Wrap(err, "failed to parse config file")
	}

	cfg := DefaultConfig()
	cfg.BaseURL = file.BaseURL
	if file.AppName != "" {
		cfg.AppName = file.AppName
	}
	if file.DataConversion != "" {
		cfg.ResponseFormat = file.DataConversion
	}
	for key, value := range file.Headers {
		cfg.Headers[key] = value
	}
	if file.Timeout != nil {
		cfg.Timeout = time.Duration(*file.Timeout)
	}
	if file.Retry != nil {
		cfg.Retry = *file.Retry
	}
	if file.Debug != nil {
		cfg.Debug = *file.Debug
	}

	if problems := cfg.Validate(); len(problems) > 0 {
		return ClientConfig{}, errors.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}
