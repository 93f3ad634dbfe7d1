package executor

import (
	"os"
	"sort"
	"strings"

	"github.com/cnosuke/mcp-exec-interactive/types"
	"go.uber.org/zap"
)

const defaultTerm = "xterm-256color"

// environMap converts KEY=value entries to a map, dropping malformed ones
func environMap(environ []string) map[string]string {
	envMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		envMap[key] = value
	}
	return envMap
}

// buildEnvironment - Build the child environment: inherited, then config, then per-request
func (e *Engine) buildEnvironment(additionalEnv map[string]string, mode types.ExecMode) []string {
	envMap := environMap(e.environ())

	// Apply environment variables from config file
	for k, v := range e.environment {
		envMap[k] = v
	}

	// Apply additional environment variables (specified per command execution)
	for k, v := range additionalEnv {
		envMap[k] = v
	}

	// Update PATH if search paths are configured
	if len(e.searchPaths) > 0 {
		searchPath := strings.Join(e.searchPaths, string(os.PathListSeparator))
		path := envMap["PATH"]

		switch e.pathBehavior {
		case "append":
			envMap["PATH"] = joinPathList(path, searchPath)
		case "replace":
			envMap["PATH"] = searchPath
		default:
			envMap["PATH"] = joinPathList(searchPath, path)
		}
	}

	if mode == types.ModePTY {
		if _, ok := envMap["TERM"]; !ok {
			envMap["TERM"] = e.term
		}
	}

	env := make([]string, 0, len(envMap))
	for k, v := range envMap {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)

	zap.S().Debugw("environment variables set",
		"PATH", envMap["PATH"],
		"path_behavior", e.pathBehavior,
		"custom_env_count", len(additionalEnv))

	return env
}

func joinPathList(first, second string) string {
	switch {
	case first == "":
		return second
	case second == "":
		return first
	default:
		return first + string(os.PathListSeparator) + second
	}
}
