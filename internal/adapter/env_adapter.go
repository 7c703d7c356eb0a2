package adapter

import "os"

// EnvReader provides read access to environment variables.
type EnvReader interface {
	LookupEnv(name string) (string, bool)
}

// OSEnv reads from the process environment.
type OSEnv struct{}

// NewOSEnv constructs an OSEnv.
func NewOSEnv() OSEnv {
	return OSEnv{}
}

// LookupEnv implements EnvReader.
func (OSEnv) LookupEnv(name string) (string, bool) {
	return os.LookupEnv(name)
}

// MapEnv is an EnvReader over a fixed snapshot, used for tests and dry runs.
type MapEnv map[string]string

// LookupEnv implements EnvReader.
func (e MapEnv) LookupEnv(name string) (string, bool) {
	v, ok := e[name]
	return v, ok
}
