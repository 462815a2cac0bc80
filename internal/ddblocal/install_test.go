package ddblocal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeInstallation creates a minimal engine layout under a temp dir and
// returns an Installation pointing at it.
func writeInstallation(t *testing.T) Installation {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "DynamoDBLocal.jar"), []byte("jar"), 0o600); err != nil {
		t.Fatalf("write engine jar: %v", err)
	}
	return Installation{Dir: dir, Java: "java"}
}

func TestInstallationPaths(t *testing.T) {
	t.Parallel()

	install := Installation{Dir: filepath.Join("/opt", "ddb"), Java: "java"}

	if got, want := install.JarPath(), filepath.Join("/opt", "ddb", "DynamoDBLocal.jar"); got != want {
		t.Errorf("JarPath() = %q, want %q", got, want)
	}
	if got, want := install.LibDir(), filepath.Join("/opt", "ddb", "DynamoDBLocal_lib"); got != want {
		t.Errorf("LibDir() = %q, want %q", got, want)
	}
	if got, want := install.AgentJarPath(), filepath.Join("/opt", "ddb", "ddb-local-agent.jar"); got != want {
		t.Errorf("AgentJarPath() = %q, want %q", got, want)
	}
}

func TestInstallationEnv(t *testing.T) {
	t.Parallel()

	t.Run("no java home", func(t *testing.T) {
		t.Parallel()

		install := Installation{Dir: filepath.Join("/opt", "ddb"), Java: "java"}
		if env := install.Env(); env != nil {
			t.Fatalf("Env() = %v, want nil", env)
		}
	})

	t.Run("java home", func(t *testing.T) {
		t.Parallel()

		install := Installation{
			Dir:      filepath.Join("/opt", "ddb"),
			Java:     "java",
			JavaHome: filepath.Join("/opt", "jdk17"),
		}
		env := install.Env()

		if got := env["JAVA_HOME"]; got != install.JavaHome {
			t.Fatalf("env[JAVA_HOME] = %q, want %q", got, install.JavaHome)
		}
		wantPrefix := filepath.Join(install.JavaHome, "bin") + string(os.PathListSeparator)
		if !strings.HasPrefix(env["PATH"], wantPrefix) {
			t.Fatalf("env[PATH] = %q, want prefix %q", env["PATH"], wantPrefix)
		}
	})
}

func TestInstallationValidate(t *testing.T) {
	t.Parallel()

	t.Run("installed", func(t *testing.T) {
		t.Parallel()

		install := writeInstallation(t)
		if err := install.Validate(); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})

	t.Run("missing jar", func(t *testing.T) {
		t.Parallel()

		install := Installation{Dir: t.TempDir(), Java: "java"}
		err := install.Validate()
		if !errors.Is(err, ErrNotInstalled) {
			t.Fatalf("Validate() = %v, want ErrNotInstalled", err)
		}
	})

	t.Run("empty dir", func(t *testing.T) {
		t.Parallel()

		install := Installation{Java: "java"}
		if err := install.Validate(); err == nil {
			t.Fatal("Validate() = nil, want error")
		}
	})

	t.Run("empty java binary", func(t *testing.T) {
		t.Parallel()

		install := Installation{Dir: filepath.Join("/opt", "ddb")}
		if err := install.Validate(); err == nil {
			t.Fatal("Validate() = nil, want error")
		}
	})
}
