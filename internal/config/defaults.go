package config

const (
	defaultHostname       = "localhost"
	defaultRESTPort       = 8580
	defaultProfile        = "MOSART"
	defaultRequestTimeout = 10
	defaultCreator        = "vizmse"
	defaultStateDir       = "~/.local/share/vizmse"
	defaultLogDir         = "~/.local/share/vizmse/logs"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	treeDBName            = "tree.db"
	registryDBName        = "registry.db"
	lockDirName           = "locks"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Engine: Engine{
			Hostname:         defaultHostname,
			RESTPort:         defaultRESTPort,
			Profile:          defaultProfile,
			RequestTimeout:   defaultRequestTimeout,
			Creator:          defaultCreator,
			PrefetchChannels: true,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
