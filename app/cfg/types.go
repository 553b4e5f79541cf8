package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	FeedsFile       string
	Port            string
	IngestInterval  int // minutes between scheduled ingestion runs
	FetchTimeout    int // seconds, per outbound HTTP request
	APIAccessKey    string
	ServingCacheTTL int // seconds, ranked-result cache
	ServingPageSize int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
