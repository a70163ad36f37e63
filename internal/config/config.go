package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env                        string
	Port                       string
	DatabaseURL                string
	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string
	TranscribeLanguage         string
	GeminiAPIKey               string
	GeminiModel                string
	TTSProvider                string
	TTSAPIKey                  string
	TTSVoiceID                 string
	MaxSilenceDurationMS       int
	ExternalCallTimeoutSec     int
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.MaxSilenceDurationMS <= 0 {
		return fmt.Errorf("MAX_SILENCE_DURATION_MS must be positive, got %d", c.MaxSilenceDurationMS)
	}
	if c.ExternalCallTimeoutSec <= 0 {
		return fmt.Errorf("EXTERNAL_CALL_TIMEOUT_SEC must be positive, got %d", c.ExternalCallTimeoutSec)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "GOOGLE_CLOUD_PROJECT_ID", value: c.GoogleCloudProjectID},
		{name: "GOOGLE_CLOUD_CREDENTIALS_JSON", value: c.GoogleCloudCredentialsJSON},
		{name: "TRANSCRIBE_LANGUAGE", value: c.TranscribeLanguage},
		{name: "GEMINI_API_KEY", value: c.GeminiAPIKey},
		{name: "TTS_PROVIDER", value: c.TTSProvider},
		{name: "TTS_API_KEY", value: c.TTSAPIKey},
	}
}

// MaxSilenceDuration is how long a call may go without a finalized
// transcription result before the re-engagement prompt is spoken.
func (c *Config) MaxSilenceDuration() time.Duration {
	return time.Duration(c.MaxSilenceDurationMS) * time.Millisecond
}

// ExternalCallTimeout bounds every outbound provider call (LLM, TTS,
// call-log writes) so a hung provider cannot stall a live call.
func (c *Config) ExternalCallTimeout() time.Duration {
	return time.Duration(c.ExternalCallTimeoutSec) * time.Second
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
