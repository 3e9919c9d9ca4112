package config

import (
	"os"
	"strconv"
)

// LookupEnvString returns the value of the environment variable key, or def if
// it is unset.
func LookupEnvString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// LookupEnvInt returns the integer value of key, or def if it is unset or not
// a number.
func LookupEnvInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// LookupEnvBool returns the boolean value of key, or def if it is unset or
// unparsable.
func LookupEnvBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
