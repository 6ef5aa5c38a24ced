package config

// DefaultModel is the Bedrock model used when none is configured.
const DefaultModel = "anthropic.claude-3-sonnet-20240229-v1:0"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.AllowedOrigins == nil {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Server.RequestTimeoutSeconds == 0 {
		cfg.Server.RequestTimeoutSeconds = 180
	}

	inf := &cfg.Inference
	if inf.Provider == "" {
		inf.Provider = ProviderBedrock
	}
	if inf.Model == "" {
		switch inf.Provider {
		case ProviderGemini:
			inf.Model = "gemini-2.5-flash"
		case ProviderMock:
			inf.Model = "mock"
		default:
			inf.Model = DefaultModel
		}
	}
	if inf.Region == "" {
		inf.Region = "us-west-2"
	}
	if inf.APIKeyEnv == "" {
		switch inf.Provider {
		case ProviderGemini:
			inf.APIKeyEnv = "GEMINI_API_KEY"
		case ProviderOpenAI:
			inf.APIKeyEnv = "LLM_TOKEN"
		}
	}
	if inf.Temperature == 0 {
		inf.Temperature = 0.5
	}
	if inf.TopK == 0 {
		inf.TopK = 200
	}
	if inf.MaxTokens == 0 {
		inf.MaxTokens = 2048
	}
	if inf.TimeoutSeconds == 0 {
		inf.TimeoutSeconds = 60
	}
	if inf.MaxRetries == nil {
		n := inf.Retries()
		inf.MaxRetries = &n
	}
	if inf.RetryBaseMillis == 0 {
		inf.RetryBaseMillis = 500
	}
}

// Default returns a fully defaulted configuration, used when no file is present.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
