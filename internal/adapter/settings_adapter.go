package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	m "autoconf.dev/pkg/autoconf/internal/model"
)

// UndefinedSetting is the stringified form of a setting that has no value.
const UndefinedSetting = "undefined"

// SettingsReader looks up workspace settings by dotted key.
type SettingsReader interface {
	// Get returns the raw setting value, or nil when unset.
	Get(key string) any
}

// ViperSettings is a SettingsReader backed by its own viper instance so that
// workspace settings never leak into the CLI configuration.
type ViperSettings struct {
	v *viper.Viper
}

// NewViperSettings builds a settings reader. Inline values are applied first;
// each file in files is then merged on top, in order. Relative file paths are
// resolved against the workspace root. Missing files are skipped.
func NewViperSettings(root m.Path, inline map[string]any, files []string) *ViperSettings {
	v := viper.New()

	if len(inline) > 0 {
		if err := v.MergeConfigMap(inline); err != nil {
			slog.Warn("Failed to merge inline settings", "error", err)
		}
	}

	for _, file := range files {
		path := file
		if root != "" && !filepath.IsAbs(path) {
			path = filepath.Join(string(root), path)
		}

		if err := mergeSettingsFile(v, path); err != nil {
			slog.Warn("Failed to load settings file", "path", path, "error", err)
			continue
		}
	}

	return &ViperSettings{v: v}
}

func mergeSettingsFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("Settings file not found", "path", path)
			return nil
		}

		return err
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		ext = "json"
	}

	v.SetConfigType(ext)
	v.SetConfigFile(path)

	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("merge %s: %w", path, err)
	}

	slog.Debug("Merged settings file", "path", path)

	return nil
}

// Get implements SettingsReader.
func (s *ViperSettings) Get(key string) any {
	return s.v.Get(key)
}

// MapSettings is a SettingsReader over a flat map of dotted keys.
type MapSettings map[string]any

// Get implements SettingsReader.
func (s MapSettings) Get(key string) any {
	return s[key]
}

// StringifySetting renders a setting value the way the editor host coerces
// values to strings: nil is "undefined", lists are comma-joined and objects
// collapse to "[object Object]".
func StringifySetting(value any) string {
	if value == nil {
		return UndefinedSetting
	}

	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float32:
		return formatNumber(float64(v))
	case float64:
		return formatNumber(v)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range rv.Len() {
			elem := rv.Index(i).Interface()
			if elem != nil {
				parts[i] = StringifySetting(elem)
			}
		}

		return strings.Join(parts, ",")
	case reflect.Map, reflect.Struct:
		return "[object Object]"
	}

	return cast.ToString(value)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	if f == 0 {
		return "0"
	}

	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		return formatExponent(f)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatExponent renders f as 1.5e+21 or 1e-7: no padding in the exponent.
func formatExponent(f float64) string {
	mantissa, exponent, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")

	digits := strings.TrimLeft(exponent[1:], "0")
	if digits == "" {
		digits = "0"
	}

	return mantissa + "e" + exponent[:1] + digits
}
