package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Shanghai must resolve on hosts without a zoneinfo database

	"github.com/spf13/viper"
)

// MinYear is the earliest year the portal publishes holiday notices for
const MinYear = 2000

// Config represents application configuration
type Config struct {
	Source SourceConfig `mapstructure:"source"`
	Output OutputConfig `mapstructure:"output"`
	Parser ParserConfig `mapstructure:"parser"`
	Daemon DaemonConfig `mapstructure:"daemon"`
	Log    LogConfig    `mapstructure:"log"`
}

// SourceConfig describes the gov.cn search portal and how to scrape it
type SourceConfig struct {
	BaseURL            string  `mapstructure:"base_url"`
	Code               string  `mapstructure:"code"`
	DataTypeID         string  `mapstructure:"data_type_id"`
	SearchWord         string  `mapstructure:"search_word"` // {year} is substituted
	UserAgent          string  `mapstructure:"user_agent"`
	ResultSelector     string  `mapstructure:"result_selector"`
	TitleSelector      string  `mapstructure:"title_selector"`
	ContentSelector    string  `mapstructure:"content_selector"`
	PageTimeout        string  `mapstructure:"page_timeout"`
	RequestDelay       string  `mapstructure:"request_delay"`
	DelayJitterPercent float64 `mapstructure:"delay_jitter_percent"`
}

// OutputConfig represents where collected data is written
type OutputConfig struct {
	Dir           string `mapstructure:"dir"`
	IndexFile     string `mapstructure:"index_file"`
	IndexName     string `mapstructure:"index_name"`
	Description   string `mapstructure:"description"`
	DescriptionZh string `mapstructure:"description_zh"`
}

// ParserConfig tunes announcement parsing
type ParserConfig struct {
	KeepUndatedSeparate bool `mapstructure:"keep_undated_separate"`
}

// DaemonConfig represents daemon mode configuration
type DaemonConfig struct {
	DailyTime string `mapstructure:"daily_time"` // HH:MM in Timezone
	Timezone  string `mapstructure:"timezone"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.base_url", "https://sousuo.www.gov.cn/sousuo/search.shtml")
	v.SetDefault("source.code", "17da70961a7")
	v.SetDefault("source.data_type_id", "107")
	v.SetDefault("source.search_word", "国务院办公厅关于{year}年部分节假日安排的通知")
	v.SetDefault("source.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	v.SetDefault("source.result_selector", ".basic_result_content>.item.is-news")
	v.SetDefault("source.title_selector", "a.title")
	v.SetDefault("source.content_selector", ".pages_content")
	v.SetDefault("source.page_timeout", "60s")
	v.SetDefault("source.request_delay", "1s")
	v.SetDefault("source.delay_jitter_percent", 20)

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.index_file", "data.json")
	v.SetDefault("output.index_name", "holidays")
	v.SetDefault("output.description", "Chinese Holiday Information")
	v.SetDefault("output.description_zh", "中国节假日信息")

	v.SetDefault("parser.keep_undated_separate", false)

	v.SetDefault("daemon.daily_time", "03:00")
	v.SetDefault("daemon.timezone", "Asia/Shanghai")

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// Load loads configuration from file. Without an explicit path a missing
// config file is not an error and the defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.holiday-collector")
		v.AddConfigPath("/etc/holiday-collector")
	}

	// HOLIDAYS_OUTPUT_DIR overrides output.dir and so on
	v.SetEnvPrefix("holidays")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required")
	}
	if !strings.Contains(c.Source.SearchWord, "{year}") {
		return fmt.Errorf("source.search_word must contain {year}")
	}
	if c.Source.ResultSelector == "" || c.Source.TitleSelector == "" || c.Source.ContentSelector == "" {
		return fmt.Errorf("source selectors are required")
	}
	if c.Source.DelayJitterPercent < 0 || c.Source.DelayJitterPercent > 100 {
		return fmt.Errorf("source.delay_jitter_percent must be between 0 and 100")
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if c.Output.IndexName == "" {
		return fmt.Errorf("output.index_name is required")
	}

	if _, err := time.LoadLocation(c.Daemon.Timezone); err != nil {
		return fmt.Errorf("daemon.timezone %q is invalid: %w", c.Daemon.Timezone, err)
	}

	return nil
}

// ValidateYears checks that every requested year is one the portal can have
// published a notice for: from MinYear up to two years ahead of now.
func ValidateYears(years []int, now time.Time) error {
	maxYear := now.Year() + 2
	for _, y := range years {
		if y < MinYear || y > maxYear {
			return fmt.Errorf("year %d out of range [%d, %d]", y, MinYear, maxYear)
		}
	}
	return nil
}

// SearchWordFor returns the search query for year
func (c *SourceConfig) SearchWordFor(year int) string {
	return strings.ReplaceAll(c.SearchWord, "{year}", fmt.Sprint(year))
}

// GetPageTimeout returns the per-page timeout
func (c *SourceConfig) GetPageTimeout() time.Duration {
	if c.PageTimeout == "" {
		return 60 * time.Second
	}
	duration, err := time.ParseDuration(c.PageTimeout)
	if err != nil || duration <= 0 {
		return 60 * time.Second
	}
	return duration
}

// GetRequestDelay returns the pause between portal requests
func (c *SourceConfig) GetRequestDelay() time.Duration {
	if c.RequestDelay == "" {
		return time.Second
	}
	duration, err := time.ParseDuration(c.RequestDelay)
	if err != nil || duration < 0 {
		return time.Second
	}
	return duration
}

// GetDailyTime returns the configured daily collection time
// Returns hour and minute (0-23, 0-59). Default: 03:00
func (c *DaemonConfig) GetDailyTime() (hour, minute int) {
	if c.DailyTime == "" {
		return 3, 0
	}

	var h, m int
	_, err := fmt.Sscanf(c.DailyTime, "%d:%d", &h, &m)
	if err != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 3, 0
	}
	return h, m
}

// GetLocation returns the daemon time zone, Asia/Shanghai when unset or unknown
func (c *DaemonConfig) GetLocation() *time.Location {
	name := c.Timezone
	if name == "" {
		name = "Asia/Shanghai"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}

// ExpandEnvVars expands environment variables in path settings
func (c *Config) ExpandEnvVars() {
	c.Output.Dir = os.ExpandEnv(c.Output.Dir)
	c.Output.IndexFile = os.ExpandEnv(c.Output.IndexFile)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
