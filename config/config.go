package config

import (
	"os"

	"github.com/jinzhu/configor"
)

// Config - Application configuration
type Config struct {
	Debug bool   `yaml:"debug" env:"DEBUG"`
	Log   string `yaml:"log" env:"LOG_PATH"`

	Exec struct {
		// シェル関連設定
		DefaultShell string `yaml:"default_shell" default:"bash" env:"EXEC_DEFAULT_SHELL"`
		Login        bool   `yaml:"login"`
		Interactive  bool   `yaml:"interactive"`
		Mode         string `yaml:"mode" default:"pty" env:"EXEC_MODE"`
		// 0 means no timeout
		DefaultTimeoutSec float64 `yaml:"default_timeout_sec" env:"EXEC_DEFAULT_TIMEOUT_SEC"`
		// 作業ディレクトリ関連設定
		DefaultWorkingDir string   `yaml:"default_working_dir" env:"DEFAULT_WORKING_DIR"`
		AllowedDirs       []string `yaml:"allowed_dirs"`
		// 環境変数関連設定
		Environment  map[string]string `yaml:"environment"`
		SearchPaths  []string          `yaml:"search_paths"`
		PathBehavior string            `yaml:"path_behavior" default:"prepend"`
		// 疑似端末関連設定
		Term           string `yaml:"term" default:"xterm-256color"`
		PtyCols        uint16 `yaml:"pty_cols" default:"120"`
		PtyRows        uint16 `yaml:"pty_rows" default:"30"`
		DrainTimeoutMs int    `yaml:"drain_timeout_ms" default:"2000"`
	} `yaml:"exec"`
}

// LoadConfig - Load configuration file. A missing file is not an error;
// defaults and environment variables still apply.
func LoadConfig(path string) (*Config, error) {
	// Booleans can't use configor defaults (false is the zero value), so set them first
	cfg := &Config{}
	cfg.Exec.Login = true
	cfg.Exec.Interactive = true

	var files []string
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
	}

	err := configor.New(&configor.Config{
		Debug:      false,
		Verbose:    false,
		Silent:     true,
		AutoReload: false,
	}).Load(cfg, files...)

	return cfg, err
}
