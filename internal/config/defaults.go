package config

import "time"

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultEnvironment = "development"
	DefaultAPIPrefix   = "/api/v1"
	DefaultLogLevel    = "info"

	DefaultRateLimitPerMinute = 60

	DefaultRowCap = 100

	DefaultClassifyTimeout  = 10 * time.Second
	DefaultGenerateTimeout  = 20 * time.Second
	DefaultExecuteTimeout   = 10 * time.Second
	DefaultInterpretTimeout = 20 * time.Second

	DefaultTimezone = "America/Bogota"
	DefaultCurrency = "COP"

	DefaultMaxQuestionLength = 2000
)
