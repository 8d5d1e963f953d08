package configs

import "time"

type Config struct {
	HttpAddr       string
	DebugAddr      string
	RequestTimeout time.Duration
	Redis          RedisConfig
	SettingsFile   string
	LogLevel       string
}

type RedisConfig struct {
	URL          string
	ProbeTimeout time.Duration
}
