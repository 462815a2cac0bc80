package ddbenv_test

import (
	"fmt"
	"testing"

	"github.com/giantswarm/ddbenv"
)

// panicTestCase defines a test case for option validation panic tests.
type panicTestCase struct {
	name     string
	panics   bool
	panicMsg string
	fn       func()
}

// requirePanics calls fn and verifies it panics (or not) with the expected message.
func requirePanics(t *testing.T, shouldPanic bool, wantMsg string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if shouldPanic && r == nil {
			t.Fatal("expected panic but didn't get one")
		}
		if !shouldPanic && r != nil {
			t.Fatalf("unexpected panic: %v", r)
		}
		if shouldPanic && r != nil {
			msg := fmt.Sprint(r)
			if msg != wantMsg {
				t.Fatalf("expected panic message %q, got %q", wantMsg, msg)
			}
		}
	}()
	fn()
}

// runPanicTests runs a slice of panic test cases using requirePanics.
func runPanicTests(t *testing.T, tests []panicTestCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			requirePanics(t, tt.panics, tt.panicMsg, tt.fn)
		})
	}
}

func TestWithPortPanicsOnInvalid(t *testing.T) {
	t.Parallel()
	runPanicTests(t, []panicTestCase{
		{
			name:     "zero",
			panics:   true,
			panicMsg: "ddbenv: port must be between 1 and 65535, got 0",
			fn:       func() { ddbenv.WithPort(0) },
		},
		{
			name:     "negative",
			panics:   true,
			panicMsg: "ddbenv: port must be between 1 and 65535, got -1",
			fn:       func() { ddbenv.WithPort(-1) },
		},
		{
			name:     "too_large",
			panics:   true,
			panicMsg: "ddbenv: port must be between 1 and 65535, got 65536",
			fn:       func() { ddbenv.WithPort(65536) },
		},
		{name: "valid", fn: func() { ddbenv.WithPort(8000) }},
		{name: "max", fn: func() { ddbenv.WithPort(65535) }},
	})
}

func TestWithEmptyStringOptionsPanic(t *testing.T) {
	t.Parallel()
	runPanicTests(t, []panicTestCase{
		{
			name:     "host",
			panics:   true,
			panicMsg: "ddbenv: host must not be empty",
			fn:       func() { ddbenv.WithHost("") },
		},
		{
			name:     "dataPath",
			panics:   true,
			panicMsg: "ddbenv: data path must not be empty",
			fn:       func() { ddbenv.WithDataPath("") },
		},
		{
			name:     "heapSize",
			panics:   true,
			panicMsg: "ddbenv: heap size must not be empty",
			fn:       func() { ddbenv.WithHeapSize("") },
		},
		{
			name:     "corsOrigin",
			panics:   true,
			panicMsg: "ddbenv: CORS origin must not be empty",
			fn:       func() { ddbenv.WithCORSOrigin("") },
		},
		{
			name:     "installDir",
			panics:   true,
			panicMsg: "ddbenv: install dir must not be empty",
			fn:       func() { ddbenv.WithInstallDir("") },
		},
		{
			name:     "javaBinary",
			panics:   true,
			panicMsg: "ddbenv: java binary path must not be empty",
			fn:       func() { ddbenv.WithJavaBinary("") },
		},
		{
			name:     "javaHome",
			panics:   true,
			panicMsg: "ddbenv: java home must not be empty",
			fn:       func() { ddbenv.WithJavaHome("") },
		},
		{
			name:     "seedDatabase",
			panics:   true,
			panicMsg: "ddbenv: seed database path must not be empty",
			fn:       func() { ddbenv.WithSeedDatabase("") },
		},
	})
}

func TestOptionApplicationDefaults(t *testing.T) {
	t.Parallel()

	snap := ddbenv.ApplyOptionsForTesting()

	if snap.Port != 0 {
		t.Errorf("Port = %d, want 0 (reserve a free port)", snap.Port)
	}
	if snap.Host != ddbenv.DefaultHost {
		t.Errorf("Host = %q, want %q", snap.Host, ddbenv.DefaultHost)
	}
	if snap.DataPath != "" {
		t.Errorf("DataPath = %q, want empty (in-memory)", snap.DataPath)
	}
	if snap.HeapSize != ddbenv.DefaultHeapSize {
		t.Errorf("HeapSize = %q, want %q", snap.HeapSize, ddbenv.DefaultHeapSize)
	}
	if snap.InstallDir != ddbenv.DefaultInstallDir {
		t.Errorf("InstallDir = %q, want %q", snap.InstallDir, ddbenv.DefaultInstallDir)
	}
	if snap.JavaBinary != ddbenv.DefaultJavaBinary {
		t.Errorf("JavaBinary = %q, want %q", snap.JavaBinary, ddbenv.DefaultJavaBinary)
	}
	if snap.JavaHome != "" {
		t.Errorf("JavaHome = %q, want empty", snap.JavaHome)
	}
	if snap.DelayTransientStatuses {
		t.Error("DelayTransientStatuses = true, want false")
	}
	if snap.OptimizeDBBeforeStartup {
		t.Error("OptimizeDBBeforeStartup = true, want false")
	}
	if snap.ShareDB {
		t.Error("ShareDB = true, want false")
	}
	if snap.CORSOrigin != "" {
		t.Errorf("CORSOrigin = %q, want empty", snap.CORSOrigin)
	}
	if snap.SeedDatabase != "" {
		t.Errorf("SeedDatabase = %q, want empty", snap.SeedDatabase)
	}
}

func TestOptionApplicationOverrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		opt    ddbenv.Option
		verify func(t *testing.T, snap ddbenv.ConfigSnapshot)
	}{
		{
			name: "WithPort",
			opt:  ddbenv.WithPort(8000),
			verify: func(t *testing.T, snap ddbenv.ConfigSnapshot) {
				t.Helper()
				if snap.Port != 8000 {
					t.Errorf("Port = %d, want 8000", snap.Port)
				}
			},
		},
		{
			name: "WithHost",
			opt:  ddbenv.WithHost("127.0.0.1"),
			verify: func(t *testing.T, snap ddbenv.ConfigSnapshot) {
				t.Helper()
				if snap.Host != "127.0.0.1" {
					t.Errorf("Host = %q, want %q", snap.Host, "127.0.0.1")
				}
			},
		},
		{
			name: "WithDataPath",
			opt:  ddbenv.WithDataPath("/var/tmp/ddb-data"),
			verify: func(t *testing.T, snap ddbenv.ConfigSnapshot) {
				t.Helper()
				if snap.DataPath != "/var/tmp/ddb-data" {
					t.Errorf("DataPath = %q, want %q", snap.DataPath, "/var/tmp/ddb-data")
				}
			},
		},
		{
			name: "WithHeapSize",
			opt:  ddbenv.WithHeapSize("1g"),
			verify: func(t *testing.T, snap ddbenv.ConfigSnapshot) {
				t.Helper()
				if snap.HeapSize != "1g" {
					t.Errorf("HeapSize = %q, want %q", snap.HeapSize, "1g")
				}
			},
		},
		{
			name: "WithDelayTransientStatuses",
			opt:  ddbenv.WithDelayTransientStatuses(true),
			verify: func(t *testing.T, snap ddbenv.ConfigSnapshot) {
				t.Helper()
				if !snap.DelayTransientStatuses {
					t.Error("DelayTransientStatuses = false, want true")
				}
			},
		},
		{
			name: "WithOptimizeDBBeforeStartup",
			opt:  ddbenv.WithOptimizeDBBeforeStartup(true),
			verify: func(t *testing.T, snap ddbenv.ConfigSnapshot) {
				t.Helper()
				if !snap.OptimizeDBBeforeStartup {
					t.Error("OptimizeDBBeforeStartup = false, want true")
				}
			},
		},
		{
			name: "WithShareDB",
			opt:  ddbenv.WithShareDB(true),
			verify: func(t *testing.T, snap ddbenv.ConfigSnapshot) {
				t.Helper()
				if !snap.ShareDB {
					t.Error("ShareDB = false, want true")
				}
			},
		},
		{
			name: "WithCORSOrigin",
			opt:  ddbenv.WithCORSOrigin("https://app.example.com"),
			verify: func(t *testing.T, snap ddbenv.ConfigSnapshot) {
				t.Helper()
				if snap.CORSOrigin != "https://app.example.com" {
					t.Errorf("CORSOrigin = %q, want %q", snap.CORSOrigin, "https://app.example.com")
				}
			},
		},
		{
			name: "WithInstallDir",
			opt:  ddbenv.WithInstallDir("/opt/dynamodb-local"),
			verify: func(t *testing.T, snap ddbenv.ConfigSnapshot) {
				t.Helper()
				if snap.InstallDir != "/opt/dynamodb-local" {
					t.Errorf("InstallDir = %q, want %q", snap.InstallDir, "/opt/dynamodb-local")
				}
			},
		},
		{
			name: "WithJavaBinary",
			opt:  ddbenv.WithJavaBinary("/usr/lib/jvm/java-21/bin/java"),
			verify: func(t *testing.T, snap ddbenv.ConfigSnapshot) {
				t.Helper()
				if snap.JavaBinary != "/usr/lib/jvm/java-21/bin/java" {
					t.Errorf("JavaBinary = %q, want %q", snap.JavaBinary, "/usr/lib/jvm/java-21/bin/java")
				}
			},
		},
		{
			name: "WithJavaHome",
			opt:  ddbenv.WithJavaHome("/usr/lib/jvm/java-21"),
			verify: func(t *testing.T, snap ddbenv.ConfigSnapshot) {
				t.Helper()
				if snap.JavaHome != "/usr/lib/jvm/java-21" {
					t.Errorf("JavaHome = %q, want %q", snap.JavaHome, "/usr/lib/jvm/java-21")
				}
			},
		},
		{
			name: "WithSeedDatabase",
			opt:  ddbenv.WithSeedDatabase("/data/seed.db"),
			verify: func(t *testing.T, snap ddbenv.ConfigSnapshot) {
				t.Helper()
				if snap.SeedDatabase != "/data/seed.db" {
					t.Errorf("SeedDatabase = %q, want %q", snap.SeedDatabase, "/data/seed.db")
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			snap := ddbenv.ApplyOptionsForTesting(tc.opt)
			tc.verify(t, snap)
		})
	}
}

func TestOptionApplicationMultipleOptions(t *testing.T) {
	t.Parallel()

	snap := ddbenv.ApplyOptionsForTesting(
		ddbenv.WithPort(8123),
		ddbenv.WithDataPath("/tmp/ddbenv-data"),
		ddbenv.WithShareDB(true),
		ddbenv.WithHeapSize("512m"),
		ddbenv.WithInstallDir("/opt/ddb"),
	)

	if snap.Port != 8123 {
		t.Errorf("Port = %d, want 8123", snap.Port)
	}
	if snap.DataPath != "/tmp/ddbenv-data" {
		t.Errorf("DataPath = %q, want %q", snap.DataPath, "/tmp/ddbenv-data")
	}
	if !snap.ShareDB {
		t.Error("ShareDB = false, want true")
	}
	if snap.HeapSize != "512m" {
		t.Errorf("HeapSize = %q, want %q", snap.HeapSize, "512m")
	}
	if snap.InstallDir != "/opt/ddb" {
		t.Errorf("InstallDir = %q, want %q", snap.InstallDir, "/opt/ddb")
	}
}

func TestOptionApplicationLastWriteWins(t *testing.T) {
	t.Parallel()

	snap := ddbenv.ApplyOptionsForTesting(
		ddbenv.WithHeapSize("512m"),
		ddbenv.WithHeapSize("2g"),
	)

	if snap.HeapSize != "2g" {
		t.Errorf("HeapSize = %q, want %q (last write wins)", snap.HeapSize, "2g")
	}
}

func TestWithInMemoryClearsDataPath(t *testing.T) {
	t.Parallel()

	snap := ddbenv.ApplyOptionsForTesting(
		ddbenv.WithDataPath("/tmp/ddbenv-data"),
		ddbenv.WithInMemory(),
	)

	if snap.DataPath != "" {
		t.Errorf("DataPath = %q, want empty after WithInMemory", snap.DataPath)
	}
}
