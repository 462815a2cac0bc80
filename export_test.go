package ddbenv

// ResetForTesting resets the singleton server state so that the next
// call to Default creates a fresh instance. This is exported only
// for use in test packages (package ddbenv_test).
func ResetForTesting() { resetForTesting() }

// ConfigSnapshot holds a copy of serverConfig fields for test assertions.
// Exported only via export_test.go so that the _test package can verify
// option closures actually mutate the config without accessing internals.
type ConfigSnapshot struct {
	Port                    int
	Host                    string
	DataPath                string
	HeapSize                string
	DelayTransientStatuses  bool
	OptimizeDBBeforeStartup bool
	ShareDB                 bool
	CORSOrigin              string
	InstallDir              string
	JavaBinary              string
	JavaHome                string
	SeedDatabase            string
}

// ApplyOptionsForTesting creates a default serverConfig, applies the given
// options, and returns a ConfigSnapshot of the result. This tests the option
// closures directly without constructing a Server.
func ApplyOptionsForTesting(opts ...Option) ConfigSnapshot {
	cfg := defaultServerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return ConfigSnapshot{
		Port:                    cfg.port,
		Host:                    cfg.host,
		DataPath:                cfg.dataPath,
		HeapSize:                cfg.heapSize,
		DelayTransientStatuses:  cfg.delayTransientStatuses,
		OptimizeDBBeforeStartup: cfg.optimizeDBBeforeStartup,
		ShareDB:                 cfg.shareDB,
		CORSOrigin:              cfg.corsOrigin,
		InstallDir:              cfg.installDir,
		JavaBinary:              cfg.javaBinary,
		JavaHome:                cfg.javaHome,
		SeedDatabase:            cfg.seedDatabase,
	}
}
