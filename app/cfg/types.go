package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Application configuration
	SourcesFile string
	Port        string
	UserAgent   string
	Timeout     int // seconds, per outbound HTTP request

	// Delays between outbound calls, milliseconds
	ArxivRequestDelay int
	InterestDelay     int
	ParseItemDelay    int
	ParseBatchDelay   int

	// Batch sizing
	PapersPerInterest int
	ArticlesPerTag    int
	ParseBatchSize    int
	ParseAllBatchSize int

	Debug   bool
	Version string
}
