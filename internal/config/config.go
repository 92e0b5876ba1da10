// Package config loads tvid.cfg, a "key = value" line format with "#"
// comments (spec §6). There is no suitable line-oriented parser in the
// dependency corpus for this one-off format, so it is hand-rolled;
// see DESIGN.md.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

const fileName = "tvid.cfg"

// Config holds the recognized tvid.cfg keys, each defaulted so a
// missing or partial file still yields a usable value set.
type Config struct {
	ChromaKeyEnabled bool
	LateThresholdMS  int
	VolumeBarsHeight int
	StartPaused      bool
	Raw              map[string]string
}

func defaultConfig() Config {
	return Config{
		ChromaKeyEnabled: true,
		LateThresholdMS:  100,
		VolumeBarsHeight: 8,
		StartPaused:      false,
		Raw:              map[string]string{},
	}
}

// Dir returns ~/.config/tvid (spec §6).
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "tvid"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads tvid.cfg from path, warning on unknown keys via logger
// (may be nil to suppress warnings). A missing file yields defaults.
func Load(path string, logger *log.Logger) (Config, error) {
	cfg := defaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := splitKeyValue(line)
		if !ok {
			if logger != nil {
				logger.Warn("invalid config line", "file", path, "line", lineNo, "text", line)
			}
			continue
		}
		cfg.Raw[key] = val
		if err := applyKey(&cfg, key, val); err != nil {
			if logger != nil {
				logger.Warn("invalid config value", "file", path, "line", lineNo, "key", key, "err", err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func splitKeyValue(line string) (key, val string, ok bool) {
	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	val = strings.TrimSpace(line[idx+1:])
	if key == "" {
		return "", "", false
	}
	return key, val, true
}

func applyKey(cfg *Config, key, val string) error {
	switch key {
	case "chroma_key":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		cfg.ChromaKeyEnabled = b
	case "late_threshold_ms":
		n, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		cfg.LateThresholdMS = n
	case "volume_bars_height":
		n, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		cfg.VolumeBarsHeight = n
	case "start_paused":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		cfg.StartPaused = b
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}
