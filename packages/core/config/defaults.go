package config

// DefaultEnvironment is used when neither the config nor --env names one
const DefaultEnvironment = "dev"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:     30000, // 30 seconds
		UserAgent:   "adminspec",
		ValidateSSL: BoolPtr(true),
		Parallel:    BoolPtr(false),
		Concurrency: 5,
		Bail:        BoolPtr(false),
		NoColor:     BoolPtr(false),
	}
}
