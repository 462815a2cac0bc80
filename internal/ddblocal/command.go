package ddblocal

import (
	"errors"
	"runtime"
	"strconv"
)

// telemetryEnvVar switches the engine's usage telemetry. Always exported as
// "0" so supervised engines never phone home.
const telemetryEnvVar = "DDB_LOCAL_TELEMETRY"

// vmWorkaround pins an extra JVM flag to a known runtime bug on one
// architecture.
type vmWorkaround struct {
	id   string
	arch string
	flag string
}

// vmWorkarounds are injected ahead of all other JVM options, in table order.
//
// jdk8345296-sve: the JVM crashes with SIGILL on Apple Silicon M4 unless SVE
// is disabled (https://bugs.openjdk.org/browse/JDK-8345296). Drop once the
// engine bundles Java 17.0.15+/21.0.7+.
var vmWorkarounds = []vmWorkaround{
	{id: "jdk8345296-sve", arch: "arm64", flag: "-XX:UseSVE=0"},
}

// Spec is the engine-facing subset of the server configuration that the
// command line is built from.
type Spec struct {
	Port     int
	DBPath   string // Empty means the engine keeps all state in memory.
	HeapSize string // JVM max heap, e.g. "256m".

	DelayTransientStatuses  bool
	OptimizeDBBeforeStartup bool
	ShareDB                 bool
}

// Validate checks the spec fields and returns an error describing the first
// missing or invalid one.
func (s Spec) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if s.HeapSize == "" {
		return errors.New("heap size must not be empty")
	}
	return nil
}

// Command builds the argv and environment that launch the engine described
// by spec from the given installation. The result is deterministic for a
// given spec, installation and host architecture: flags appear in a fixed
// order, -inMemory is emitted exactly when no DB path is set, and -dbPath
// exactly when one is.
func Command(spec Spec, install Installation) (argv []string, env map[string]string) {
	return command(spec, install, runtime.GOARCH)
}

func command(spec Spec, install Installation, arch string) ([]string, map[string]string) {
	argv := append([]string{install.Java}, vmOptions(arch)...)
	argv = append(argv,
		"-Xmx"+spec.HeapSize,
		"-javaagent:"+install.AgentJarPath(),
		"-Djava.library.path="+install.LibDir(),
		"-jar", install.JarPath(),
		"-port", strconv.Itoa(spec.Port),
	)
	if spec.DBPath == "" {
		argv = append(argv, "-inMemory")
	} else {
		argv = append(argv, "-dbPath", spec.DBPath)
	}
	if spec.DelayTransientStatuses {
		argv = append(argv, "-delayTransientStatuses")
	}
	if spec.OptimizeDBBeforeStartup {
		argv = append(argv, "-optimizeDbBeforeStartup")
	}
	if spec.ShareDB {
		argv = append(argv, "-sharedDb")
	}

	env := make(map[string]string, 3)
	for k, v := range install.Env() {
		env[k] = v
	}
	env[telemetryEnvVar] = "0"
	return argv, env
}

// vmOptions returns the workaround flags applying to arch, in table order.
func vmOptions(arch string) []string {
	var flags []string
	for _, w := range vmWorkarounds {
		if w.arch == arch {
			flags = append(flags, w.flag)
		}
	}
	return flags
}
