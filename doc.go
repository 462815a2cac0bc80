// Package ddbenv runs a local DynamoDB-compatible engine as a supervised
// child process for integration tests and local development.
//
// ddbenv launches the bundled DynamoDB Local engine (a Java process), waits
// until it answers real DynamoDB API calls, and tears it down with
// escalating force when asked to stop. Servers run in-memory by default;
// with a data path the engine persists its tables as SQLite files that
// survive restarts and can be wiped, purged or inspected between runs.
//
// # Basic Usage
//
//	import "github.com/giantswarm/ddbenv"
//
//	ctx := context.Background()
//
//	srv, err := ddbenv.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Stop(ctx) // best-effort escalation; never returns an error
//
//	// import "github.com/aws/aws-sdk-go-v2/service/dynamodb"
//	client := dynamodb.New(dynamodb.Options{
//	    BaseEndpoint: aws.String(srv.URL()),
//	    // ... static test credentials, region ...
//	})
//	// Use client...
//
// # Persistence and Resets
//
// A server constructed with WithDataPath keeps its tables on disk. Reset
// restores a known-clean state between test runs without rebuilding the
// server:
//
//	srv, err := ddbenv.New(
//	    ddbenv.WithDataPath("/var/tmp/ddb-data"),
//	    ddbenv.WithShareDB(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run tests ...
//
//	// Drop all user tables in place and restart the engine.
//	if err := srv.Reset(ctx, ddbenv.ResetPurge); err != nil {
//	    log.Fatal(err)
//	}
//
// # Shared Default Server
//
// Default returns a process-wide server configured from the DYNAMODB_*
// environment variables, for the common one-engine-per-test-binary case:
//
//	func TestMain(m *testing.M) {
//	    srv, err := ddbenv.Default()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    ctx := context.Background()
//	    if _, err := srv.Start(ctx); err != nil {
//	        log.Fatal(err)
//	    }
//	    code := m.Run()
//	    srv.Stop(ctx)
//	    os.Exit(code)
//	}
//
// ddbenv supervises only the engine process. It does not create tables or
// load fixtures; use the AWS SDK against URL() for that, or seed a prepared
// shared database file via WithSeedDatabase.
package ddbenv
