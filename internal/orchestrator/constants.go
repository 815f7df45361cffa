package orchestrator

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Timeout constants for different operations
var (
	// DefaultWorkflowTimeout is the standard timeout for release and plan runs
	DefaultWorkflowTimeout = getTimeoutOrDefault("WORKFLOW_TIMEOUT", 60*time.Minute, 5*time.Second)
	// RollbackTimeout is the timeout for rollback operations
	RollbackTimeout = getTimeoutOrDefault("ROLLBACK_TIMEOUT", 10*time.Minute, 100*time.Millisecond)
	// DefaultRetryCount is the number of retries for compensation and announce
	// calls. The core bump and push steps never retry.
	DefaultRetryCount = uint64(getRetryCountOrDefault("RETRY_COUNT", 3, 1))
	// DefaultRetryDelay is the initial delay for exponential backoff
	DefaultRetryDelay = getTimeoutOrDefault("RETRY_DELAY", 1*time.Second, 100*time.Millisecond)
)

// isTestEnvironment detects if we're running in a test environment
func isTestEnvironment() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, ".test") || strings.Contains(arg, "go test") {
			return true
		}
	}
	return os.Getenv("GO_TEST") == "true" || os.Getenv("TEST_MODE") == "true"
}

// getTimeoutOrDefault returns production timeout or test timeout based on environment
func getTimeoutOrDefault(envVar string, prodDefault, testDefault time.Duration) time.Duration {
	if env := os.Getenv(envVar); env != "" {
		if duration, err := time.ParseDuration(env); err == nil {
			return duration
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}

// getRetryCountOrDefault returns production retry count or test retry count based on environment
func getRetryCountOrDefault(envVar string, prodDefault, testDefault int) int {
	if env := os.Getenv(envVar); env != "" {
		if count, err := strconv.Atoi(env); err == nil {
			return count
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}
