package app

import (
	"os"
	"sync/atomic"

	"github.com/spf13/cast"
)

const testModeEnv = "BACKOFFICE_TEST_MODE"

var testMode atomic.Pointer[bool]

func readTestMode() bool {
	on := cast.ToBool(os.Getenv(testModeEnv))
	testMode.Store(&on)
	return on
}

// InTestMode reports whether binaries should return before dialing Redis or
// the remote API. Any value cast accepts as true enables it.
func InTestMode() bool {
	if v := testMode.Load(); v != nil {
		return *v
	}
	return readTestMode()
}

// RefreshTestMode re-reads the environment after it changed.
func RefreshTestMode() {
	readTestMode()
}
