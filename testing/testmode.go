// Package testing switches the binaries into test mode when blank-imported
// from a test file, and points remote endpoints at unroutable addresses.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var testDefaults = map[string]string{
	"API_BASE_URL":  "http://127.0.0.1:0/api",
	"GOTENBERG_URL": "http://127.0.0.1:0",
}

var enable = sync.OnceFunc(func() {
	_ = os.Setenv("BACKOFFICE_TEST_MODE", "1")
	for key, value := range testDefaults {
		if _, ok := os.LookupEnv(key); !ok {
			_ = os.Setenv(key, value)
		}
	}
})

func init() {
	enable()
}

// TestMain lets a package adopt this as its own TestMain.
func TestMain(m *stdtesting.M) {
	enable()
	os.Exit(m.Run())
}
