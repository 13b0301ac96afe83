package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                 string // connection string for the database
	WaitForServices    string // duration to wait for other services to be ready
	LogLevel           string // sets the log level (zap log level values)
	SQLLogLevel        string // sets the log level for sql subsystem
	LogFormat          string // text vs json
	LogFilter          string // zapfilter rules applied to named loggers
	MigrationSourceURL string // location of migration files
	EnableTelemetry    bool   // enable telemetry
	TelemetryEndpoint  string // endpoint for telemetry ("stdout" prints to console)
	ServerAddr         string // listen addr for the http api
	ProfilingPort      int    // port for pprof data (0: disabled)
	TLSCertFile        string // certificate for https
	TLSKeyFile         string // key for TLSCertFile
	TLSCAFile          string // ca to verify client certificates
	DataDir            string // directory containing lap exports (csv/json)
	Source             string // session source: file or db
	JSONPath           string // JSONPath selecting lap records in json exports
	JSONDurationUnit   string // unit of numeric durations in json exports
	CacheExpiration    string // how long loaded sessions are kept in memory
	OutputFormat       string // table or json
)
