package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"scholar_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"scholar_password" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"scholarstream" description:"Database name"`

	// Application configuration
	SourcesFile string `long:"sources-file" env:"SOURCES_FILE" description:"YAML file with interest/tag source tables (embedded defaults used when unset)"`
	Port        string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	UserAgent   string `long:"user-agent" env:"USER_AGENT" default:"ScholarStream/1.0" description:"User agent string for HTTP requests"`
	Timeout     int    `long:"timeout" env:"HTTP_TIMEOUT" default:"30" description:"Timeout in seconds for outbound HTTP requests"`

	// Delays between outbound calls, in milliseconds. ArXiv asks for no more
	// than one request every three seconds; the others pace batch loops.
	ArxivRequestDelay int `long:"arxiv-request-delay" env:"ARXIV_REQUEST_DELAY" default:"3000" description:"Delay before each ArXiv API request (ms)"`
	InterestDelay     int `long:"interest-delay" env:"INTEREST_DELAY" default:"1000" description:"Delay between per-interest fetch iterations (ms)"`
	ParseItemDelay    int `long:"parse-item-delay" env:"PARSE_ITEM_DELAY" default:"2000" description:"Delay after each parsed item (ms)"`
	ParseBatchDelay   int `long:"parse-batch-delay" env:"PARSE_BATCH_DELAY" default:"1000" description:"Delay between parse batches (ms)"`

	// Batch sizing
	PapersPerInterest int `long:"papers-per-interest" env:"PAPERS_PER_INTEREST" default:"10" description:"Papers requested per research interest"`
	ArticlesPerTag    int `long:"articles-per-tag" env:"ARTICLES_PER_TAG" default:"5" description:"Articles kept per Medium tag"`
	ParseBatchSize    int `long:"parse-batch-size" env:"PARSE_BATCH_SIZE" default:"5" description:"Papers per bounded parse run"`
	ParseAllBatchSize int `long:"parse-all-batch-size" env:"PARSE_ALL_BATCH_SIZE" default:"10" description:"Papers per batch in exhaustive parse runs"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:            raw.DBHost,
		DBPort:            raw.DBPort,
		DBUser:            raw.DBUser,
		DBPassword:        raw.DBPassword,
		DBName:            raw.DBName,
		SourcesFile:       raw.SourcesFile,
		Port:              raw.Port,
		UserAgent:         raw.UserAgent,
		Timeout:           raw.Timeout,
		ArxivRequestDelay: raw.ArxivRequestDelay,
		InterestDelay:     raw.InterestDelay,
		ParseItemDelay:    raw.ParseItemDelay,
		ParseBatchDelay:   raw.ParseBatchDelay,
		PapersPerInterest: raw.PapersPerInterest,
		ArticlesPerTag:    raw.ArticlesPerTag,
		ParseBatchSize:    raw.ParseBatchSize,
		ParseAllBatchSize: raw.ParseAllBatchSize,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(c *Cfg) {
	globalCfg = c
}
