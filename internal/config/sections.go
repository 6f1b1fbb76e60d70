package config

import "github.com/spf13/viper"

// History configures the history store.
type History struct {
	// Backend is json or sqlite.
	Backend    string
	Path       string
	MaxEntries int
}

// Functions configures the custom function file.
type Functions struct {
	Path string
}

// Log configures the logger.
type Log struct {
	Level string
	// Format is text or json.
	Format string
	// Output is stderr, stdout, or file.
	Output     string
	OutputFile string
}

// Telemetry configures tracing and metrics.
type Telemetry struct {
	Enabled bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("history.backend", "json")
	v.SetDefault("history.path", "history/calc_history.json")
	v.SetDefault("history.max_entries", 50)
	v.SetDefault("functions.path", "functions/functions.json")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.output_file", "logs/calc.log")
	v.SetDefault("telemetry.enabled", false)
}

func getHistoryConfig(v *viper.Viper) *History {
	return &History{
		Backend:    v.GetString("history.backend"),
		Path:       v.GetString("history.path"),
		MaxEntries: v.GetInt("history.max_entries"),
	}
}

func getFunctionsConfig(v *viper.Viper) *Functions {
	return &Functions{
		Path: v.GetString("functions.path"),
	}
}

func getLogConfig(v *viper.Viper) *Log {
	return &Log{
		Level:      v.GetString("log.level"),
		Format:     v.GetString("log.format"),
		Output:     v.GetString("log.output"),
		OutputFile: v.GetString("log.output_file"),
	}
}

func getTelemetryConfig(v *viper.Viper) *Telemetry {
	return &Telemetry{
		Enabled: v.GetBool("telemetry.enabled"),
	}
}
