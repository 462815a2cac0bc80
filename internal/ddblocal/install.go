package ddblocal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/giantswarm/ddbenv/internal/sentinel"
)

// ErrNotInstalled indicates that the install directory does not hold a
// launchable engine distribution.
const ErrNotInstalled = sentinel.Error("dynamodb-local is not installed")

// Artifact names inside an engine install directory. The layout is the
// official DynamoDB Local distribution plus the instrumentation agent the
// installer places next to the engine jar.
const (
	jarName      = "DynamoDBLocal.jar"
	libDirName   = "DynamoDBLocal_lib"
	agentJarName = "ddb-local-agent.jar"
)

// Installation locates an unpacked DynamoDB Local distribution. Installing
// or downloading the engine is out of scope; Dir points at a directory an
// external installer produced.
type Installation struct {
	Dir      string // Root of the unpacked distribution.
	Java     string // Java binary used to launch the engine.
	JavaHome string // Optional JAVA_HOME exported to the child process.
}

// JarPath returns the path of the engine's launchable jar.
func (i Installation) JarPath() string {
	return filepath.Join(i.Dir, jarName)
}

// LibDir returns the engine's native library directory, handed to the JVM
// via java.library.path.
func (i Installation) LibDir() string {
	return filepath.Join(i.Dir, libDirName)
}

// AgentJarPath returns the path of the instrumentation agent jar.
func (i Installation) AgentJarPath() string {
	return filepath.Join(i.Dir, agentJarName)
}

// Env returns the environment variables the child process needs to resolve
// the Java runtime. With JavaHome set, JAVA_HOME is exported and its bin
// directory is prepended to PATH so the engine picks up the same JVM the
// supervisor was configured with. Without JavaHome the child inherits the
// parent environment unchanged.
func (i Installation) Env() map[string]string {
	if i.JavaHome == "" {
		return nil
	}
	return map[string]string{
		"JAVA_HOME": i.JavaHome,
		"PATH":      filepath.Join(i.JavaHome, "bin") + string(os.PathListSeparator) + os.Getenv("PATH"),
	}
}

// Validate checks that the installation can launch the engine. A missing
// engine jar reports ErrNotInstalled.
func (i Installation) Validate() error {
	if i.Dir == "" {
		return errors.New("install dir must not be empty")
	}
	if i.Java == "" {
		return errors.New("java binary must not be empty")
	}
	if _, err := os.Stat(i.JarPath()); err != nil {
		return fmt.Errorf("%w: %s", ErrNotInstalled, i.JarPath())
	}
	return nil
}
