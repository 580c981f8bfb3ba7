package config

import "os"

// ExpandEnv expands shell-style environment references (${VAR} and $VAR) in
// raw YAML bytes before parsing, so connection strings and API-key names can
// live in the environment rather than the config files.
//
//	endpoint: ${TOOL_TRANSPORT_ENDPOINT}
//	dsn: ${DB_HOST}:${DB_PORT}
//
// A missing variable expands to the empty string; the validator rejects
// required fields left empty, which produces a clearer error than failing
// here.
func ExpandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
