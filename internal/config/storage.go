package config

type Storage struct {
	// sqlite or postgres
	Type     string             `mapstructure:"type"`
	SQLite   *SQLiteStorage     `mapstructure:"local,omitempty"`
	Postgres *PostgreSQLStorage `mapstructure:"postgres,omitempty"`
}

type SQLiteStorage struct {
	Path string `mapstructure:"path,omitempty"`
}

type PostgreSQLStorage struct {
	DSN string `mapstructure:"dsn,omitempty"`
}
