package config

var defaults = map[string]any{
	"secret":    "",
	"log_level": "info",
	"listen":    ":8080",
	"base_url":  "",

	"allowed_networks": "",

	"session_store": "memory",
	"session_ttl":   24 * 14, // two weeks
	"nonce_store":   "memory",
	"user_auth_ttl": 8,

	"timezone":  "America/Santiago",
	"notify_to": "",

	"rbac.policy_file": "",
	"rbac.superusers":  "",

	"email.host":     "host.docker.internal",
	"email.port":     25,
	"email.username": "",
	"email.password": "",
	"email.from":     "noreply@example.com",

	"redis.addr":     "localhost:6379",
	"redis.password": "",
	"redis.db":       0,

	"storage.type":         "sqlite",
	"storage.local.path":   "./data/storage.db",
	"storage.postgres.dsn": "",
}

func Defaults() map[string]any {
	values := make(map[string]any)
	for k, v := range defaults {
		values[k] = v
	}
	return values
}
