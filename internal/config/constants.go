package config

// Default paths for local state
const (
	// DefaultDatabasePath is the default path for the single-file store
	DefaultDatabasePath = "./highlights-keeper.db"

	// DefaultRememberMePath is where the active session token is kept between runs
	DefaultRememberMePath = "./.highlights-keeper-session"

	// DefaultPasswordSalt is the application-wide salt for the sha256 password scheme
	DefaultPasswordSalt = "highlights-keeper-static-salt-v1"
)
