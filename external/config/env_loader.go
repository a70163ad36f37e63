package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/harshmriduhash/callbot/internal/config"
)

type envConfig struct {
	Env                        string `env:"ENV" envDefault:"production"`
	Port                       string `env:"PORT" envDefault:"5001"`
	DatabaseURL                string `env:"DATABASE_URL,required"`
	GoogleCloudProjectID       string `env:"GOOGLE_CLOUD_PROJECT_ID,required"`
	GoogleCloudCredentialsJSON string `env:"GOOGLE_CLOUD_CREDENTIALS_JSON,required"`
	GoogleCloudSpeechLocation  string `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"global"`
	GoogleCloudSpeechModel     string `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"telephony"`
	TranscribeLanguage         string `env:"TRANSCRIBE_LANGUAGE" envDefault:"en-US"`
	GeminiAPIKey               string `env:"GEMINI_API_KEY,required"`
	GeminiModel                string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	TTSProvider                string `env:"TTS_PROVIDER" envDefault:"elevenlabs"`
	TTSAPIKey                  string `env:"TTS_API_KEY,required"`
	TTSVoiceID                 string `env:"TTS_VOICE_ID"`
	MaxSilenceDurationMS       int    `env:"MAX_SILENCE_DURATION_MS" envDefault:"8000"`
	ExternalCallTimeoutSec     int    `env:"EXTERNAL_CALL_TIMEOUT_SEC" envDefault:"5"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                        raw.Env,
		Port:                       raw.Port,
		DatabaseURL:                raw.DatabaseURL,
		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,
		TranscribeLanguage:         raw.TranscribeLanguage,
		GeminiAPIKey:               raw.GeminiAPIKey,
		GeminiModel:                raw.GeminiModel,
		TTSProvider:                raw.TTSProvider,
		TTSAPIKey:                  raw.TTSAPIKey,
		TTSVoiceID:                 raw.TTSVoiceID,
		MaxSilenceDurationMS:       raw.MaxSilenceDurationMS,
		ExternalCallTimeoutSec:     raw.ExternalCallTimeoutSec,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
