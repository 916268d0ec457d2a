// Package config loads the service configuration from defaults, an optional JSON or YAML file and the
// environment, in that order.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/cv-tailor/internal/constraints"
	"github.com/jonathan/cv-tailor/internal/convert"
	"github.com/jonathan/cv-tailor/internal/fetch"
	"github.com/jonathan/cv-tailor/internal/ingestion"
	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/pipeline"
	"github.com/jonathan/cv-tailor/internal/rewriting"
	"github.com/jonathan/cv-tailor/internal/tailoring"
)

// Defaults
const (
	DefaultPort           = 3000
	DefaultMaxUploadBytes = 10 << 20
)

// Config is the complete runtime configuration. It is read once at startup and handed to
// constructors; nothing reads the environment after Load returns.
type Config struct {
	Port           int      `json:"port,omitempty" yaml:"port,omitempty" validate:"gte=1,lte=65535"`
	RequestTimeout Duration `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty" validate:"gt=0"`
	MaxUploadBytes int64    `json:"max_upload_bytes,omitempty" yaml:"max_upload_bytes,omitempty" validate:"gt=0"`
	OutputName     string   `json:"output_name,omitempty" yaml:"output_name,omitempty" validate:"required"`
	CORSOrigin     string   `json:"cors_origin,omitempty" yaml:"cors_origin,omitempty"`
	SkipPolish     bool     `json:"skip_polish,omitempty" yaml:"skip_polish,omitempty"`
	Verbose        bool     `json:"verbose,omitempty" yaml:"verbose,omitempty"`

	LLM         LLMConfig         `json:"llm" yaml:"llm"`
	Convert     ConvertConfig     `json:"convert" yaml:"convert"`
	Fetch       FetchConfig       `json:"fetch" yaml:"fetch"`
	Anchors     tailoring.Anchors `json:"anchors" yaml:"anchors"`
	Constraints constraints.Rules `json:"constraints,omitempty" yaml:"constraints,omitempty" validate:"dive"`
	RateLimit   RateLimitConfig   `json:"rate_limit" yaml:"rate_limit"`
	JWT         JWTConfig         `json:"jwt" yaml:"jwt"`
}

// LLMConfig selects the model provider. API keys are only taken from the environment.
type LLMConfig struct {
	Provider  llm.Provider `json:"provider,omitempty" yaml:"provider,omitempty" validate:"omitempty,oneof=anthropic gemini"`
	Model     string       `json:"model,omitempty" yaml:"model,omitempty"`
	MaxTokens int          `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" validate:"gte=0"`
	BaseURL   string       `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`

	AnthropicAPIKey string `json:"-" yaml:"-"`
	GeminiAPIKey    string `json:"-" yaml:"-"`
}

// ConvertConfig selects the document conversion backend.
type ConvertConfig struct {
	Backend       string   `json:"backend,omitempty" yaml:"backend,omitempty" validate:"oneof=libreoffice gotenberg"`
	SofficePath   string   `json:"soffice_path,omitempty" yaml:"soffice_path,omitempty"`
	GotenbergURL  string   `json:"gotenberg_url,omitempty" yaml:"gotenberg_url,omitempty" validate:"omitempty,url"`
	Timeout       Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"gt=0"`
	MaxConcurrent int64    `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty" validate:"gte=1"`
}

// FetchConfig controls job page retrieval.
type FetchConfig struct {
	Timeout          Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"gt=0"`
	UserAgent        string   `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	UseBrowser       bool     `json:"use_browser,omitempty" yaml:"use_browser,omitempty"`
	ChromePath       string   `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	ContentSelectors []string `json:"content_selectors,omitempty" yaml:"content_selectors,omitempty"`
}

// RateLimitConfig is the per-client request budget of the HTTP API.
type RateLimitConfig struct {
	Enabled         bool     `json:"enabled" yaml:"enabled"`
	DefaultLimit    int      `json:"default_limit,omitempty" yaml:"default_limit,omitempty" validate:"gte=0"`
	DefaultWindow   Duration `json:"default_window,omitempty" yaml:"default_window,omitempty" validate:"gte=0"`
	TailorLimit     int      `json:"tailor_limit,omitempty" yaml:"tailor_limit,omitempty" validate:"gte=0"`
	TailorWindow    Duration `json:"tailor_window,omitempty" yaml:"tailor_window,omitempty" validate:"gte=0"`
	ExtractLimit    int      `json:"extract_limit,omitempty" yaml:"extract_limit,omitempty" validate:"gte=0"`
	ExtractWindow   Duration `json:"extract_window,omitempty" yaml:"extract_window,omitempty" validate:"gte=0"`
	CleanupInterval Duration `json:"cleanup_interval,omitempty" yaml:"cleanup_interval,omitempty" validate:"gte=0"`
	Whitelist       []string `json:"whitelist,omitempty" yaml:"whitelist,omitempty"`
	Blacklist       []string `json:"blacklist,omitempty" yaml:"blacklist,omitempty"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Port:           DefaultPort,
		RequestTimeout: Duration(pipeline.DefaultTimeout),
		MaxUploadBytes: DefaultMaxUploadBytes,
		OutputName:     pipeline.DefaultOutputName,
		CORSOrigin:     "*",
		Convert: ConvertConfig{
			Backend:       convert.BackendLibreOffice,
			Timeout:       Duration(convert.DefaultTimeout),
			MaxConcurrent: convert.DefaultMaxConcurrent,
		},
		Fetch: FetchConfig{
			Timeout:   Duration(fetch.DefaultTimeout),
			UserAgent: fetch.DefaultUserAgent,
		},
		Anchors:     tailoring.DefaultAnchors(),
		Constraints: constraints.DefaultRules(),
		RateLimit: RateLimitConfig{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   Duration(time.Minute),
			TailorLimit:     30,
			TailorWindow:    Duration(time.Hour),
			ExtractLimit:    60,
			ExtractWindow:   Duration(time.Minute),
			CleanupInterval: Duration(5 * time.Minute),
		},
	}
}

// Load builds a Config from defaults, the file at path (skipped when path is empty) and the process
// environment, then validates it. Callers load .env files before calling Load.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the JSON or YAML file at path onto c. The format is chosen by extension.
func (c *Config) LoadFile(path string) error {
	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
	return nil
}

// ApplyEnv overlays environment variables onto c. Unset variables leave the current value alone.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	env := envReader{getenv: getenv}

	env.str("ANTHROPIC_API_KEY", &c.LLM.AnthropicAPIKey)
	env.str("GEMINI_API_KEY", &c.LLM.GeminiAPIKey)
	env.str("LLM_MODEL", &c.LLM.Model)
	env.str("LLM_BASE_URL", &c.LLM.BaseURL)
	if v := getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = llm.Provider(strings.ToLower(v))
	}

	env.integer("PORT", &c.Port)
	env.duration("REQUEST_TIMEOUT", &c.RequestTimeout)
	env.int64("MAX_UPLOAD_BYTES", &c.MaxUploadBytes)
	env.str("OUTPUT_NAME", &c.OutputName)
	env.str("CORS_ORIGIN", &c.CORSOrigin)
	env.boolean("SKIP_POLISH", &c.SkipPolish)

	env.str("CONVERTER", &c.Convert.Backend)
	env.str("SOFFICE_PATH", &c.Convert.SofficePath)
	env.str("GOTENBERG_URL", &c.Convert.GotenbergURL)
	env.duration("CONVERT_TIMEOUT", &c.Convert.Timeout)
	env.int64("CONVERT_MAX_CONCURRENT", &c.Convert.MaxConcurrent)

	env.boolean("USE_BROWSER", &c.Fetch.UseBrowser)
	env.str("CHROME_PATH", &c.Fetch.ChromePath)

	env.boolean("RATE_LIMIT_ENABLED", &c.RateLimit.Enabled)
	env.integer("RATE_LIMIT_DEFAULT_LIMIT", &c.RateLimit.DefaultLimit)
	env.duration("RATE_LIMIT_DEFAULT_WINDOW", &c.RateLimit.DefaultWindow)
	env.integer("RATE_LIMIT_TAILOR_LIMIT", &c.RateLimit.TailorLimit)
	env.duration("RATE_LIMIT_TAILOR_WINDOW", &c.RateLimit.TailorWindow)
	env.integer("RATE_LIMIT_EXTRACT_LIMIT", &c.RateLimit.ExtractLimit)
	env.duration("RATE_LIMIT_EXTRACT_WINDOW", &c.RateLimit.ExtractWindow)
	env.duration("RATE_LIMIT_CLEANUP_INTERVAL", &c.RateLimit.CleanupInterval)
	env.list("RATE_LIMIT_WHITELIST", &c.RateLimit.Whitelist)
	env.list("RATE_LIMIT_BLACKLIST", &c.RateLimit.Blacklist)

	env.str("JWT_SECRET", &c.JWT.Secret)
	if err := c.JWT.applyExpiration(getenv("JWT_EXPIRATION_HOURS")); err != nil {
		env.errs = append(env.errs, err.Error())
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = detectProvider(c.LLM.AnthropicAPIKey, c.LLM.GeminiAPIKey)
	}

	if len(env.errs) > 0 {
		return fmt.Errorf("config error: %s", strings.Join(env.errs, "; "))
	}
	return nil
}

// detectProvider picks the provider whose key is present, preferring Anthropic.
func detectProvider(anthropicKey, geminiKey string) llm.Provider {
	if anthropicKey == "" && geminiKey != "" {
		return llm.ProviderGemini
	}
	return llm.ProviderAnthropic
}

var validate = validator.New()

// Validate checks field constraints, the anchor pattern and the JWT settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Convert.Backend == convert.BackendGotenberg && c.Convert.GotenbergURL == "" {
		return fmt.Errorf("config error: GOTENBERG_URL is required when CONVERTER is %s", convert.BackendGotenberg)
	}
	if err := c.Anchors.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.JWT.Enabled() {
		if err := c.JWT.normalize(); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	return nil
}

// APIKey returns the key for the selected provider, or "" when none is configured.
func (c *Config) APIKey() string {
	if c.LLM.Provider == llm.ProviderGemini {
		return c.LLM.GeminiAPIKey
	}
	return c.LLM.AnthropicAPIKey
}

// LLMSettings returns the model configuration of the selected provider.
func (c *Config) LLMSettings() (*llm.Config, error) {
	settings, err := llm.ConfigFor(c.LLM.Provider)
	if err != nil {
		return nil, err
	}
	if c.LLM.Model != "" {
		settings = settings.WithModel(llm.TierAdvanced, c.LLM.Model)
	}
	if c.LLM.MaxTokens > 0 {
		settings.MaxTokens = c.LLM.MaxTokens
	}
	if c.LLM.BaseURL != "" {
		settings.BaseURL = c.LLM.BaseURL
	}
	return settings, nil
}

// ConverterOptions returns the conversion backend settings.
func (c *Config) ConverterOptions() convert.Options {
	return convert.Options{
		Backend:       c.Convert.Backend,
		SofficePath:   c.Convert.SofficePath,
		GotenbergURL:  c.Convert.GotenbergURL,
		Timeout:       c.Convert.Timeout.Std(),
		MaxConcurrent: c.Convert.MaxConcurrent,
	}
}

// IngestionOptions returns the job page extraction settings.
func (c *Config) IngestionOptions() ingestion.Options {
	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Timeout = c.Fetch.Timeout.Std()
	if c.Fetch.UserAgent != "" {
		fetchOpts.UserAgent = c.Fetch.UserAgent
	}
	return ingestion.Options{
		Fetch:      fetchOpts,
		UseBrowser: c.Fetch.UseBrowser,
		Browser: fetch.BrowserOptions{
			Timeout:   c.Fetch.Timeout.Std(),
			ExecPath:  c.Fetch.ChromePath,
			UserAgent: fetchOpts.UserAgent,
			Verbose:   c.Verbose,
		},
		ContentSelectors: c.Fetch.ContentSelectors,
		Verbose:          c.Verbose,
	}
}

// PipelineOptions returns the tailoring pipeline settings.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Timeout:    c.RequestTimeout.Std(),
		OutputName: c.OutputName,
		SkipPolish: c.SkipPolish,
		Tailoring: tailoring.Options{
			Anchors: c.Anchors.WithDefaults(),
			Rules:   c.Constraints,
		},
	}
}

// NewGenerator returns a rewrite generator quoting the configured anchors and limits to the model.
func (c *Config) NewGenerator(client llm.Client) *rewriting.Generator {
	g := rewriting.NewGenerator(client, c.Anchors.WithDefaults().Title)
	if words := c.Constraints.Rule(constraints.FieldBullet).MaxWords; words > 0 {
		g.MaxBulletWords = words
	}
	if chars := c.Constraints.Rule(constraints.FieldSkills).MaxChars; chars > 0 {
		g.MaxSkillsChars = chars
	}
	return g
}

// envReader collects parse failures so every bad variable is reported at once.
type envReader struct {
	getenv func(string) string
	errs   []string
}

func (e *envReader) str(key string, dst *string) {
	if v := e.getenv(key); v != "" {
		*dst = v
	}
}

func (e *envReader) integer(key string, dst *int) {
	if v := e.getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Sprintf("invalid %s: %q", key, v))
			return
		}
		*dst = n
	}
}

func (e *envReader) int64(key string, dst *int64) {
	if v := e.getenv(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.errs = append(e.errs, fmt.Sprintf("invalid %s: %q", key, v))
			return
		}
		*dst = n
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	if v := e.getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Sprintf("invalid %s: %q", key, v))
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(key string, dst *Duration) {
	if v := e.getenv(key); v != "" {
		d, err := ParseDuration(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Sprintf("invalid %s: %v", key, err))
			return
		}
		*dst = d
	}
}

func (e *envReader) list(key string, dst *[]string) {
	v := e.getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}
