package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Neo4j     Neo4jConfig
	Corpus    CorpusConfig
	Sources   SourcesConfig
	Analysis  AnalysisConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    int
	WriteTimeout   int
	BodyLimit      int
	AllowedOrigins string
	Development    bool
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type Neo4jConfig struct {
	Enabled  bool
	URI      string
	Username string
	Password string
	Database string
}

type CorpusConfig struct {
	SeedStatic bool
	LoincPath  string
	BatchSize  int
}

type SourcesConfig struct {
	OpenFDA OpenFDAConfig
	RxNorm  RxNormConfig
	FHIR    FHIRConfig
}

type OpenFDAConfig struct {
	Enabled    bool
	BaseURL    string
	PageSize   int
	MaxPages   int
	TimeoutSec int
}

type RxNormConfig struct {
	Enabled    bool
	BaseURL    string
	Drugs      []string
	TimeoutSec int
}

type FHIRConfig struct {
	Enabled    bool
	BaseURL    string
	PageSize   int
	MaxPages   int
	TimeoutSec int
}

type AnalysisConfig struct {
	MaxDifferentialResults int
	MaxCriticalFindings    int
	MinTermLength          int
	NeutralConfidence      float64
	MaxTextLength          int
	RulesPath              string
	PersistResults         bool
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads the given file when path is set, otherwise it searches the
// default locations for config.yaml. A missing default file is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/xnosis")
	}

	v.SetEnvPrefix("XNOSIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Analysis.MaxDifferentialResults < 0 {
		return fmt.Errorf("analysis.maxDifferentialResults must be >= 0, got %d", c.Analysis.MaxDifferentialResults)
	}
	if c.Analysis.MaxCriticalFindings < 0 {
		return fmt.Errorf("analysis.maxCriticalFindings must be >= 0, got %d", c.Analysis.MaxCriticalFindings)
	}
	if c.Analysis.NeutralConfidence < 0 || c.Analysis.NeutralConfidence > 1 {
		return fmt.Errorf("analysis.neutralConfidence must be within [0,1], got %v", c.Analysis.NeutralConfidence)
	}
	if c.Analysis.MaxTextLength <= 0 {
		return fmt.Errorf("analysis.maxTextLength must be positive, got %d", c.Analysis.MaxTextLength)
	}
	return nil
}

func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.bodyLimit", 10485760)
	v.SetDefault("server.allowedOrigins", "*")
	v.SetDefault("server.development", false)

	v.SetDefault("sqlite.path", "./data/medical_terms.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttlSec", 3600)

	v.SetDefault("neo4j.enabled", false)
	v.SetDefault("neo4j.uri", "bolt://localhost:7687")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "password")
	v.SetDefault("neo4j.database", "neo4j")

	v.SetDefault("corpus.seedStatic", true)
	v.SetDefault("corpus.loincPath", "")
	v.SetDefault("corpus.batchSize", 1000)

	v.SetDefault("sources.openFDA.enabled", false)
	v.SetDefault("sources.openFDA.baseURL", "https://api.fda.gov/drug/label.json")
	v.SetDefault("sources.openFDA.pageSize", 100)
	v.SetDefault("sources.openFDA.maxPages", 10)
	v.SetDefault("sources.openFDA.timeoutSec", 30)

	v.SetDefault("sources.rxNorm.enabled", false)
	v.SetDefault("sources.rxNorm.baseURL", "https://rxnav.nlm.nih.gov/REST")
	v.SetDefault("sources.rxNorm.drugs", []string{
		"aspirin", "metformin", "lisinopril", "atorvastatin", "amlodipine",
		"metoprolol", "omeprazole", "levothyroxine", "warfarin", "insulin",
	})
	v.SetDefault("sources.rxNorm.timeoutSec", 30)

	v.SetDefault("sources.fhir.enabled", false)
	v.SetDefault("sources.fhir.baseURL", "")
	v.SetDefault("sources.fhir.pageSize", 100)
	v.SetDefault("sources.fhir.maxPages", 5)
	v.SetDefault("sources.fhir.timeoutSec", 30)

	v.SetDefault("analysis.maxDifferentialResults", 5)
	v.SetDefault("analysis.maxCriticalFindings", 0)
	v.SetDefault("analysis.minTermLength", 3)
	v.SetDefault("analysis.neutralConfidence", 0.5)
	v.SetDefault("analysis.maxTextLength", 50000)
	v.SetDefault("analysis.rulesPath", "")
	v.SetDefault("analysis.persistResults", true)

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerSecond", 10)
	v.SetDefault("rateLimit.burst", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
