package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"autoconf.dev/pkg/autoconf/internal/adapter"
	m "autoconf.dev/pkg/autoconf/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "autoconf"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	// filesConfigKey is the namespace holding the desired files.
	filesConfigKey = "autoConfigurator.files"

	workspaceFlagName = "workspace"
	dryRunFlagName    = "dry-run"
	reportFlagName    = "report"
	verboseFlagName   = "verbose"
	logFileFlagName   = "log-file"

	workspaceRootKey     = "workspace.root"
	workspaceNameKey     = "workspace.name"
	workspaceSettingsKey = "workspace.settings"
	inlineSettingsKey    = "settings"
	dryRunConfigKey      = "apply.dry_run"
	reportConfigKey      = "apply.report"

	defaultWorkspaceRoot = "."
	defaultDryRun        = false
	defaultReport        = ""

	envPrefix = "AUTOCONF"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".autoconf.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

// defaultSettingsFiles are merged into the settings reader, in order.
var defaultSettingsFiles = []string{filepath.Join(".vscode", "settings.json")}

var globalLogger *slog.Logger

// configReadErr is set when autoconf.yaml exists but could not be read.
var configReadErr error

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(filesConfigKey, []any{})
	viper.SetDefault(workspaceRootKey, defaultWorkspaceRoot)
	viper.SetDefault(workspaceNameKey, "")
	viper.SetDefault(workspaceSettingsKey, defaultSettingsFiles)
	viper.SetDefault(inlineSettingsKey, map[string]any{})
	viper.SetDefault(dryRunConfigKey, defaultDryRun)
	viper.SetDefault(reportConfigKey, defaultReport)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	configReadErr = readConfig()
}

// readConfig loads the config file. A missing file is not an error.
func readConfig() error {
	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("read %s: %w", viper.ConfigFileUsed(), err)
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler).With("component", configBaseName)
	slog.SetDefault(globalLogger)
}

// loadFileSpecs decodes the desired files from the configuration namespace.
func loadFileSpecs() ([]m.FileSpec, error) {
	return decodeFileSpecs(viper.GetViper())
}

func decodeFileSpecs(v *viper.Viper) ([]m.FileSpec, error) {
	var specs []m.FileSpec
	if err := v.UnmarshalKey(filesConfigKey, &specs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filesConfigKey, err)
	}

	return specs, nil
}

// resolveWorkspace turns the configured root into a Workspace. A root that
// does not exist or is not a directory yields a closed workspace.
func resolveWorkspace(root, name string) m.Workspace {
	if strings.TrimSpace(root) == "" {
		slog.Info("No workspace root configured")
		return m.Workspace{}
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		slog.Warn("Failed to resolve workspace root", "root", root, "error", err)
		return m.Workspace{}
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		slog.Warn("Workspace root not found", "root", abs, "error", err)
		return m.Workspace{}
	}

	if name == "" {
		name = filepath.Base(abs)
	}

	return m.Workspace{Root: m.Path(abs), Name: name}
}

// buildSettings assembles the settings reader for workspace.
func buildSettings(workspace m.Workspace) adapter.SettingsReader {
	return adapter.NewViperSettings(
		workspace.Root,
		viper.GetStringMap(inlineSettingsKey),
		viper.GetStringSlice(workspaceSettingsKey),
	)
}

// runArgsFromConfig gathers everything a pass needs from viper.
func runArgsFromConfig() (m.Workspace, []m.FileSpec, adapter.SettingsReader, error) {
	if configReadErr != nil {
		return m.Workspace{}, nil, nil, configReadErr
	}

	specs, err := loadFileSpecs()
	if err != nil {
		return m.Workspace{}, nil, nil, err
	}

	workspace := resolveWorkspace(viper.GetString(workspaceRootKey), viper.GetString(workspaceNameKey))

	return workspace, specs, buildSettings(workspace), nil
}
