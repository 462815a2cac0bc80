package ddbenv

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by FromEnv. Boolean variables follow
// strconv.ParseBool; unset or unparsable values count as false.
const (
	// EnvInMemory forces in-memory mode when true, overriding any data
	// path configured before FromEnv is applied.
	EnvInMemory = "DYNAMODB_IN_MEMORY"

	// EnvHeapSize sets the engine JVM's maximum heap (e.g. "1g").
	EnvHeapSize = "DYNAMODB_HEAP_SIZE"

	// EnvDelayTransientStatuses enables emulated CREATING/DELETING delays.
	EnvDelayTransientStatuses = "DYNAMODB_DELAY_TRANSIENT_STATUSES"

	// EnvOptimizeDBBeforeStartup makes the engine optimize its database
	// files before serving.
	EnvOptimizeDBBeforeStartup = "DYNAMODB_OPTIMIZE_DB_BEFORE_STARTUP"

	// EnvShareDB makes the engine use one shared database file regardless
	// of request credentials.
	EnvShareDB = "DYNAMODB_SHARE_DB"

	// EnvCORS sets the allowed CORS origin recorded in the configuration.
	EnvCORS = "DYNAMODB_CORS"
)

// serverConfig holds the resolved configuration for a Server. Values are
// fixed at New, except dataPath, which SetDataPath may swap until the first
// start.
type serverConfig struct {
	port     int // 0 means reserve a free port during New
	host     string
	dataPath string // empty means in-memory
	heapSize string

	delayTransientStatuses  bool
	optimizeDBBeforeStartup bool
	shareDB                 bool
	corsOrigin              string

	installDir   string
	javaBinary   string
	javaHome     string
	seedDatabase string

	healthCheckInterval   time.Duration
	healthCheckRetries    int
	stopJoinTimeout       time.Duration
	portCloseInterval     time.Duration
	portCloseRetries      int
	killPortCloseInterval time.Duration
	killPortCloseRetries  int
	dataLockTimeout       time.Duration
}

// defaultServerConfig returns a serverConfig populated with the package
// defaults: an in-memory engine on a port reserved during New.
func defaultServerConfig() serverConfig {
	return serverConfig{
		host:                  DefaultHost,
		heapSize:              DefaultHeapSize,
		installDir:            DefaultInstallDir,
		javaBinary:            DefaultJavaBinary,
		healthCheckInterval:   DefaultHealthCheckInterval,
		healthCheckRetries:    DefaultHealthCheckRetries,
		stopJoinTimeout:       DefaultStopJoinTimeout,
		portCloseInterval:     DefaultPortCloseInterval,
		portCloseRetries:      DefaultPortCloseRetries,
		killPortCloseInterval: DefaultKillPortCloseInterval,
		killPortCloseRetries:  DefaultKillPortCloseRetries,
		dataLockTimeout:       DefaultDataLockTimeout,
	}
}

// validate checks all serverConfig invariants and returns an error
// describing every violation found, or nil if the config is valid.
// Option constructors already reject most bad values with panics; validate
// guards the combinations options cannot see in isolation.
func (c serverConfig) validate() error {
	var errs []error

	if c.port < 0 || c.port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 0 and 65535, got %d", c.port))
	}
	if c.host == "" {
		errs = append(errs, errors.New("host must not be empty"))
	}
	if c.heapSize == "" {
		errs = append(errs, errors.New("heap size must not be empty"))
	}
	if c.installDir == "" {
		errs = append(errs, errors.New("install dir must not be empty"))
	}
	if c.javaBinary == "" {
		errs = append(errs, errors.New("java binary must not be empty"))
	}
	if c.healthCheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("health check interval must be positive, got %v", c.healthCheckInterval))
	}
	if c.healthCheckRetries <= 0 {
		errs = append(errs, fmt.Errorf("health check retries must be positive, got %d", c.healthCheckRetries))
	}
	if c.stopJoinTimeout <= 0 {
		errs = append(errs, fmt.Errorf("stop join timeout must be positive, got %v", c.stopJoinTimeout))
	}
	if c.portCloseInterval <= 0 {
		errs = append(errs, fmt.Errorf("port close interval must be positive, got %v", c.portCloseInterval))
	}
	if c.portCloseRetries <= 0 {
		errs = append(errs, fmt.Errorf("port close retries must be positive, got %d", c.portCloseRetries))
	}
	if c.killPortCloseInterval <= 0 {
		errs = append(errs, fmt.Errorf("kill port close interval must be positive, got %v", c.killPortCloseInterval))
	}
	if c.killPortCloseRetries <= 0 {
		errs = append(errs, fmt.Errorf("kill port close retries must be positive, got %d", c.killPortCloseRetries))
	}
	if c.dataLockTimeout <= 0 {
		errs = append(errs, fmt.Errorf("data lock timeout must be positive, got %v", c.dataLockTimeout))
	}
	if c.seedDatabase != "" {
		if c.dataPath == "" {
			errs = append(errs, errors.New("seed database requires a data path"))
		}
		if !c.shareDB {
			errs = append(errs, errors.New("seed database requires shared database mode"))
		}
	}

	return errors.Join(errs...)
}

// envBool reports whether the named environment variable holds a true value
// per strconv.ParseBool. Unset or unparsable values count as false.
func envBool(name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(name)))
	return err == nil && v
}
