package provider

import (
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid gemini",
			cfg:  Config{Backend: BackendGemini, Model: "gemini-2.5-flash", APIKey: "k", Temperature: 0.7},
		},
		{
			name: "valid groq",
			cfg:  Config{Backend: BackendGroq, Model: "llama-3.3-70b-versatile", APIKey: "k", Temperature: 0.2},
		},
		{
			name: "valid ollama without key",
			cfg:  Config{Backend: BackendOllama, Model: "llama3"},
		},
		{
			name:    "gemini requires api key",
			cfg:     Config{Backend: BackendGemini, Model: "gemini-2.5-flash"},
			wantErr: "GOOGLE_API_KEY",
		},
		{
			name:    "groq requires api key",
			cfg:     Config{Backend: BackendGroq, Model: "llama-3.3-70b-versatile"},
			wantErr: "GROQ_API_KEY",
		},
		{
			name:    "unknown backend",
			cfg:     Config{Backend: "bedrock", Model: "m", APIKey: "k"},
			wantErr: "unknown backend",
		},
		{
			name:    "empty model",
			cfg:     Config{Backend: BackendOllama},
			wantErr: "model name",
		},
		{
			name:    "temperature out of range",
			cfg:     Config{Backend: BackendOllama, Model: "llama3", Temperature: 3},
			wantErr: "temperature",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "")
	t.Setenv("MODEL_MAX_TOKENS", "")
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.Backend != BackendGemini {
		t.Errorf("default backend = %q, want gemini", cfg.Backend)
	}
	if cfg.Model == "" {
		t.Error("default model empty")
	}
	if cfg.MaxTokens != 1024 {
		t.Errorf("default max tokens = %d, want 1024", cfg.MaxTokens)
	}
}
