package settings

const (
	defaultVersion        = "1.0.0"
	defaultServerPort     = 5912
	defaultServerHost     = "127.0.0.1"
	defaultDatabasePath   = "~/.capa/capa.db"
	defaultTimeoutMinutes = 60
)

// Default returns the settings document for a brand-new installation.
// Merging never mutates the returned value in place; callers always
// receive a fresh copy.
func Default() ServerSettings {
	return ServerSettings{
		Version: defaultVersion,
		Server: Server{
			Port: defaultServerPort,
			Host: defaultServerHost,
		},
		Database: Database{
			Path: defaultDatabasePath,
		},
		Session: Session{
			TimeoutMinutes: defaultTimeoutMinutes,
		},
	}
}
