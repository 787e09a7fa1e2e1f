package config

const (
	defaultProductName     = "app"
	defaultProductVersion  = "0.0.0"
	defaultPublisher       = "unknown"
	defaultUpdateChannel   = "dev"
	defaultSourceDir       = "source"
	defaultOutputDir       = "output"
	defaultStateDir        = "~/.local/share/shipwright/state"
	defaultLogDir          = "~/.local/share/shipwright/logs"
	defaultBuildCommand    = "scons"
	defaultTimestampServer = "http://timestamp.digicert.com"
	defaultSourceLanguage  = "en"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Product: Product{
			Name:          defaultProductName,
			Version:       defaultProductVersion,
			Publisher:     defaultPublisher,
			UpdateChannel: defaultUpdateChannel,
		},
		Signing: Signing{
			TimestampServer: defaultTimestampServer,
		},
		Paths: Paths{
			SourceDir: defaultSourceDir,
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
		},
		Build: Build{
			Command:        defaultBuildCommand,
			Optimize:       true,
			SourceLanguage: defaultSourceLanguage,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
