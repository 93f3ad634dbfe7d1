package executor

import (
	"os"
	"os/exec"
	"testing"

	"github.com/cnosuke/mcp-exec-interactive/config"
	"github.com/creack/pty"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testConfig mirrors the defaults LoadConfig produces, in pipe mode
func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Exec.DefaultShell = "bash"
	cfg.Exec.Login = true
	cfg.Exec.Interactive = true
	cfg.Exec.Mode = "pipe"
	cfg.Exec.PathBehavior = "prepend"
	cfg.Exec.Term = "xterm-256color"
	cfg.Exec.PtyCols = 120
	cfg.Exec.PtyRows = 30
	cfg.Exec.DrainTimeoutMs = 2000
	return cfg
}

// testEnviron is a small synthetic inherited environment; HOME points at an
// empty directory so no personal rc files are sourced.
func testEnviron(t *testing.T) func() []string {
	home := t.TempDir()
	return func() []string {
		return []string{
			"PATH=" + os.Getenv("PATH"),
			"HOME=" + home,
			"LANG=C",
		}
	}
}

func newTestEngine(t *testing.T, mutate func(*config.Config), opts ...Option) *Engine {
	t.Helper()
	zap.ReplaceGlobals(zaptest.NewLogger(t))

	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	return NewEngine(cfg, append([]Option{WithEnviron(testEnviron(t))}, opts...)...)
}

func requireShell(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func requirePty(t *testing.T) {
	t.Helper()
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pseudo-terminal not available: %v", err)
	}
	_ = tty.Close()
	_ = ptmx.Close()
}

func boolPtr(v bool) *bool {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}
