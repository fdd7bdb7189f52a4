package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"recogstats/internal/render"
	"recogstats/internal/stats"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const defaultExternalHTTPTimeout = 90 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

const (
	PanelNone   = render.PanelNone
	PanelTable  = render.PanelTable
	PanelImages = render.PanelImages

	MeasureWords = stats.MeasureWords
	MeasureChars = stats.MeasureChars
)

type Config struct {
	OrgURLs     []string `yaml:"org_urls"`
	OrgURLsFile string   `yaml:"org_urls_file"`
	OrgMarker   string   `yaml:"org_marker"`

	OutputDir           string `yaml:"output_dir"`
	Panel               string `yaml:"panel"`
	ManifestFilename    string `yaml:"manifest_filename"`
	ResolveLastModified *bool  `yaml:"resolve_last_modified"`

	DescriptionThreshold int    `yaml:"description_threshold"`
	DescriptionMeasure   string `yaml:"description_measure"`

	ImageURLTemplate string `yaml:"image_url_template"`
	ImageReferer     string `yaml:"image_referer"`

	Workers                    int    `yaml:"workers"`
	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds"`
	Timezone                   string `yaml:"timezone"`

	DBPath string `yaml:"db_path"`

	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`

	LogLevel       string `yaml:"log_level"`
	LogDevelopment bool   `yaml:"log_development"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML

	optionalOrgURLs bool
}

// Option adjusts the configuration after file and environment, before
// defaults and validation. CLI flags are applied this way.
type Option func(*Config)

// WithoutOrgURLs lets commands that never fetch load a config with no
// organization urls.
func WithoutOrgURLs() Option {
	return func(c *Config) { c.optionalOrgURLs = true }
}

// Load reads path (or CONFIG_PATH, or ./config.yaml), applies .env and
// environment overrides, then opts, fills defaults and validates. A missing
// file is only an error when path was given explicitly.
func Load(path string, opts ...Option) (Config, error) {
	var cfg Config

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return cfg, fmt.Errorf("loading .env: %w", err)
		}
	}

	explicit := path != ""
	if path == "" {
		path = "config.yaml"
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			path = envPath
			explicit = true
		}
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	case explicit || !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Finalize(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if urls := os.Getenv("ORG_URLS"); urls != "" {
		cfg.OrgURLs = splitList(urls)
	}
	envOverride(&cfg.OrgURLsFile, "ORG_URLS_FILE")
	envOverride(&cfg.OrgMarker, "ORG_MARKER")
	envOverride(&cfg.OutputDir, "OUTPUT_DIR")
	envOverride(&cfg.Panel, "PANEL")
	envOverride(&cfg.ManifestFilename, "MANIFEST_FILENAME")
	if val := os.Getenv("RESOLVE_LAST_MODIFIED"); val != "" {
		b := parseBool(val)
		cfg.ResolveLastModified = &b
	}
	envOverride(&cfg.DescriptionMeasure, "DESCRIPTION_MEASURE")
	envOverride(&cfg.ImageURLTemplate, "IMAGE_URL_TEMPLATE")
	envOverride(&cfg.ImageReferer, "IMAGE_REFERER")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")
	envOverrideBool(&cfg.LogDevelopment, "LOG_DEVELOPMENT")

	for key, field := range map[string]*int{
		"DESCRIPTION_THRESHOLD":         &cfg.DescriptionThreshold,
		"WORKERS":                       &cfg.Workers,
		"EXTERNAL_HTTP_TIMEOUT_SECONDS": &cfg.ExternalHTTPTimeoutSeconds,
	} {
		if err := envOverrideInt(field, key); err != nil {
			return err
		}
	}
	return nil
}

// Finalize fills defaults, merges org_urls_file into OrgURLs and validates.
// It is safe to call again after flags have changed fields.
func (c *Config) Finalize() error {
	if c.OrgMarker == "" {
		c.OrgMarker = "org-"
	}
	if c.OutputDir == "" {
		c.OutputDir = "statistics"
	}
	if c.Panel == "" {
		c.Panel = PanelNone
	}
	if c.ManifestFilename == "" {
		c.ManifestFilename = "main.manifest.json"
	}
	if c.ResolveLastModified == nil {
		b := true
		c.ResolveLastModified = &b
	}
	if c.DescriptionThreshold == 0 {
		c.DescriptionThreshold = 50
	}
	if c.DescriptionMeasure == "" {
		c.DescriptionMeasure = MeasureWords
	}
	if c.ImageURLTemplate == "" {
		c.ImageURLTemplate = "https://s7d2.scene7.com/is/image/IMGDIR/%s"
	}
	if c.ImageReferer == "" {
		c.ImageReferer = "https://inside.corp.adobe.com/"
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.ExternalHTTPTimeoutSeconds == 0 {
		c.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.OrgURLsFile != "" {
		urls, err := readURLFile(c.OrgURLsFile)
		if err != nil {
			return fmt.Errorf("invalid org_urls_file '%s': %w", c.OrgURLsFile, err)
		}
		c.OrgURLs = append(c.OrgURLs, urls...)
		c.OrgURLsFile = ""
	}
	c.OrgURLs = lo.Uniq(lo.Compact(lo.Map(c.OrgURLs, func(u string, _ int) string {
		return strings.TrimSpace(u)
	})))

	if len(c.OrgURLs) == 0 && !c.optionalOrgURLs {
		return fmt.Errorf("no organization urls configured (org_urls, org_urls_file, ORG_URLS or --org-url)")
	}
	switch c.Panel {
	case PanelNone, PanelTable, PanelImages:
	default:
		return fmt.Errorf("panel must be '%s', '%s' or '%s', got '%s'", PanelNone, PanelTable, PanelImages, c.Panel)
	}
	switch c.DescriptionMeasure {
	case MeasureWords, MeasureChars:
	default:
		return fmt.Errorf("description_measure must be '%s' or '%s', got '%s'", MeasureWords, MeasureChars, c.DescriptionMeasure)
	}
	if c.DescriptionThreshold < 1 {
		return fmt.Errorf("invalid description_threshold '%d': must be >= 1", c.DescriptionThreshold)
	}
	if strings.Count(c.ImageURLTemplate, "%") != 1 || !strings.Contains(c.ImageURLTemplate, "%s") {
		return fmt.Errorf("invalid image_url_template '%s': must contain exactly one %%s and no other %%", c.ImageURLTemplate)
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid workers '%d': must be >= 1", c.Workers)
	}
	if c.ExternalHTTPTimeoutSeconds < 5 {
		return fmt.Errorf("invalid external_http_timeout_seconds '%d': must be >= 5", c.ExternalHTTPTimeoutSeconds)
	}
	if (c.SlackBotToken == "") != (c.SlackChannelID == "") {
		return fmt.Errorf("slack_bot_token and slack_channel_id must be set together")
	}

	if strings.EqualFold(c.Timezone, "Local") {
		c.Location = time.Local
	} else {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
		}
		c.Location = loc
	}
	return nil
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackChannelID != ""
}

func (c Config) LastModifiedEnabled() bool {
	return c.ResolveLastModified == nil || *c.ResolveLastModified
}

func (c *Config) SetLastModifiedEnabled(enabled bool) {
	c.ResolveLastModified = &enabled
}

func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = parseBool(val)
	}
}

func parseBool(val string) bool {
	return strings.EqualFold(val, "true") || val == "1"
}
