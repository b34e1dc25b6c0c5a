package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Parser provider names accepted in Config.Parser.
const (
	ParserOllama    = "ollama"
	ParserOpenAI    = "openai"
	ParserAnthropic = "anthropic"
)

// OCR provider names accepted in Config.OCR.
const (
	OCRTesseract = "tesseract"
	OCRVision    = "vision"
)

// Config is the top-level application configuration.
//
// The pipeline reads a snapshot of this struct at the start of each run;
// changes saved mid-run do not affect a run already in flight.
type Config struct {
	// Parser selects the semantic-parsing backend: "ollama", "openai" or
	// "anthropic".
	Parser string `yaml:"parser" json:"parser"`

	// OCR selects the text-recognition backend for image input:
	// "tesseract" (local) or "vision" (remote model).
	OCR string `yaml:"ocr" json:"ocr"`

	// OllamaHost is the base URL of the local model server.
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`

	// OllamaModel is the local model used for parsing. When empty, the
	// first model reported by the server is picked and persisted here.
	OllamaModel string `yaml:"ollama_model" json:"ollama_model"`

	// VisionModel is the local multimodal model used for image-to-text.
	VisionModel string `yaml:"vision_model" json:"vision_model"`

	// OpenAIModel / AnthropicModel name the hosted models.
	OpenAIModel    string `yaml:"openai_model" json:"openai_model"`
	AnthropicModel string `yaml:"anthropic_model" json:"anthropic_model"`

	// OCRLanguages is the language hint list passed to tesseract,
	// e.g. ["eng", "kor"].
	OCRLanguages []string `yaml:"ocr_languages" json:"ocr_languages"`

	// PromptContext is an optional free-form string appended verbatim to
	// every extraction prompt (e.g. "I work at ACME, meetings default to
	// the Berlin office").
	PromptContext string `yaml:"prompt_context" json:"prompt_context"`

	// CalendarDir is the directory holding one .ics file per calendar.
	CalendarDir string `yaml:"calendar_dir" json:"calendar_dir"`

	// DefaultCalendar is the calendar name used when an event names no
	// destination, e.g. "personal".
	DefaultCalendar string `yaml:"default_calendar" json:"default_calendar"`

	// DefaultDurationMinutes is the duration applied to timed events
	// without an explicit end.
	DefaultDurationMinutes int `yaml:"default_duration_minutes" json:"default_duration_minutes"`

	// InboxDir is the directory scanned in watch mode.
	InboxDir string `yaml:"inbox_dir" json:"inbox_dir"`

	// WatchCron is a cron-style schedule (e.g. "* * * * *") for inbox
	// scans in watch mode.
	WatchCron string `yaml:"watch_cron" json:"watch_cron"`

	// AutoCommit commits extracted events without confirmation. Only
	// honored in watch mode; interactive runs always confirm.
	AutoCommit bool `yaml:"auto_commit" json:"auto_commit"`

	// Listen is the HTTP listen address for /health and /metrics in
	// watch mode. Empty disables the server.
	Listen string `yaml:"listen" json:"listen"`

	// Notify enables a desktop notification after a successful commit.
	Notify bool `yaml:"notify" json:"notify"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Parser:                 ParserOllama,
		OCR:                    OCRTesseract,
		OllamaHost:             "http://127.0.0.1:11434",
		VisionModel:            "llava",
		OpenAIModel:            "gpt-4o-mini",
		AnthropicModel:         "claude-3-5-haiku-latest",
		OCRLanguages:           []string{"eng"},
		CalendarDir:            defaultDataDir("calendars"),
		DefaultCalendar:        "personal",
		DefaultDurationMinutes: 60,
		InboxDir:               defaultDataDir("inbox"),
		WatchCron:              "* * * * *",
		Listen:                 "127.0.0.1:8099",
		Notify:                 true,
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	switch c.Parser {
	case ParserOllama, ParserOpenAI, ParserAnthropic:
	default:
		c.Parser = ParserOllama
	}
	switch c.OCR {
	case OCRTesseract, OCRVision:
	default:
		c.OCR = OCRTesseract
	}
	if c.OllamaHost == "" {
		c.OllamaHost = "http://127.0.0.1:11434"
	}
	if c.VisionModel == "" {
		c.VisionModel = "llava"
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = "gpt-4o-mini"
	}
	if c.AnthropicModel == "" {
		c.AnthropicModel = "claude-3-5-haiku-latest"
	}
	if len(c.OCRLanguages) == 0 {
		c.OCRLanguages = []string{"eng"}
	}
	if c.CalendarDir == "" {
		c.CalendarDir = defaultDataDir("calendars")
	}
	if c.DefaultCalendar == "" {
		c.DefaultCalendar = "personal"
	}
	if c.DefaultDurationMinutes <= 0 {
		c.DefaultDurationMinutes = 60
	}
	if c.InboxDir == "" {
		c.InboxDir = defaultDataDir("inbox")
	}
	if c.WatchCron == "" {
		c.WatchCron = "* * * * *"
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".textcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the
// package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// DefaultPath returns the default config file location under the user's
// config directory.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "textcal", "config.yaml")
}

func defaultDataDir(sub string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "textcal", sub)
}
