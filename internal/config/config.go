package config

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// RedisConfig holds redis connection settings. Leave Addr empty to run
// without the snapshot store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// FeedsConfig controls the RSS/JSON feed pipeline.
type FeedsConfig struct {
	RegistryFile    string `mapstructure:"registry_file"`    // optional feeds.yaml overrides
	RefreshInterval string `mapstructure:"refresh_interval"` // duration string, e.g., "15m"
	ItemsPerFeed    int    `mapstructure:"items_per_feed"`
	RetryAttempts   int    `mapstructure:"retry_attempts"`
	RetryBaseDelay  string `mapstructure:"retry_base_delay"` // duration string
}

// SourceEndpoint configures one external API source of the aggregator.
type SourceEndpoint struct {
	BaseURL  string `mapstructure:"base_url"`
	Disabled bool   `mapstructure:"disabled"`
}

// AggregatorConfig groups the external API sources.
type AggregatorConfig struct {
	HackerNews     SourceEndpoint `mapstructure:"hackernews"`
	GitHub         SourceEndpoint `mapstructure:"github"`
	PubMed         SourceEndpoint `mapstructure:"pubmed"`
	ClinicalTrials SourceEndpoint `mapstructure:"clinicaltrials"`
	Reddit         SourceEndpoint `mapstructure:"reddit"`
	OpenFDA        SourceEndpoint `mapstructure:"openfda"`
	CacheTTL       string         `mapstructure:"cache_ttl"` // duration string
	Interval       string         `mapstructure:"interval"`  // serve-mode pass interval
}

// OpenAIConfig enables the optional insights digest.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Config is the top-level configuration structure.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Feeds      FeedsConfig      `mapstructure:"feeds"`
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Feeds.RefreshInterval == "" {
		c.Feeds.RefreshInterval = "15m"
	}
	if c.Feeds.ItemsPerFeed == 0 {
		c.Feeds.ItemsPerFeed = 10
	}
	if c.Feeds.RetryAttempts == 0 {
		c.Feeds.RetryAttempts = 3
	}
	if c.Feeds.RetryBaseDelay == "" {
		c.Feeds.RetryBaseDelay = "1s"
	}
	if c.Aggregator.HackerNews.BaseURL == "" {
		c.Aggregator.HackerNews.BaseURL = "https://hacker-news.firebaseio.com/v0"
	}
	if c.Aggregator.GitHub.BaseURL == "" {
		c.Aggregator.GitHub.BaseURL = "https://api.github.com"
	}
	if c.Aggregator.PubMed.BaseURL == "" {
		c.Aggregator.PubMed.BaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	}
	if c.Aggregator.ClinicalTrials.BaseURL == "" {
		c.Aggregator.ClinicalTrials.BaseURL = "https://clinicaltrials.gov/api/v2"
	}
	if c.Aggregator.Reddit.BaseURL == "" {
		c.Aggregator.Reddit.BaseURL = "https://www.reddit.com"
	}
	if c.Aggregator.OpenFDA.BaseURL == "" {
		c.Aggregator.OpenFDA.BaseURL = "https://api.fda.gov"
	}
	if c.Aggregator.CacheTTL == "" {
		c.Aggregator.CacheTTL = "5m"
	}
	if c.Aggregator.Interval == "" {
		c.Aggregator.Interval = "30m"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
}
