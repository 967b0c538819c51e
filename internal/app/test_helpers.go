package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/dllforge/internal/hcl_adapter"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for the configuration at
// configPath, wired with the HCL loader and version writer. It returns the
// app with its report and log buffers.
func SetupAppTest(t *testing.T, configPath string, opts ...Option) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	outBuffer := &SafeBuffer{}
	logBuffer := &SafeBuffer{}
	cfg := &Config{ConfigPath: configPath, LogLevel: "debug", LogFormat: "text"}
	testApp, err := NewApp(outBuffer, logBuffer, cfg, hcl_adapter.NewLoader(), hcl_adapter.NewVersionWriter(), opts...)
	if err != nil {
		t.Fatalf("creating app: %v", err)
	}

	t.Cleanup(func() {
		if os.Getenv("DLLFORGE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, outBuffer, logBuffer
}
