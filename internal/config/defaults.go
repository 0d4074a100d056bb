package config

const (
	defaultOutputDir     = "./keyframes_output"
	defaultQuality       = 2
	defaultLayout        = LayoutStem
	defaultFFmpegBinary  = "ffmpeg"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultLedgerPath    = "~/.local/share/keyframer/history.db"
	defaultConfigPath    = "~/.config/keyframer/config.toml"
	defaultProjectConfig = "keyframer.toml"
	defaultHistoryLimit  = 20
)

// defaultExtensions mirrors the allow-list shipped with the original tool.
var defaultExtensions = []string{"mp4", "mov", "avi", "mkv", "flv"}

// Default returns a Config populated with repository defaults. Workers is left
// at zero and resolved to the CPU count during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
		},
		Extraction: Extraction{
			Quality:      defaultQuality,
			Extensions:   append([]string(nil), defaultExtensions...),
			Layout:       defaultLayout,
			FFmpegBinary: defaultFFmpegBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Ledger: Ledger{
			Path:         defaultLedgerPath,
			HistoryLimit: defaultHistoryLimit,
		},
	}
}
