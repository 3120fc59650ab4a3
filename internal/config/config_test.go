package config

import (
	"errors"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_KEY",
		"DATABASE_URL", "DATABASE_MAX_OPEN_CONNS", "DATABASE_MAX_IDLE_CONNS",
		"FACE_MODELS_URL", "FACE_MODELS_DIR", "FACE_MAX_FRAME_SIZE",
		"LOG_LEVEL", "LOG_FORMAT", "WEB_HOST", "WEB_PORT", "WEB_ALLOWED_ORIGINS", "WEB_API_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Database.MaxOpenConns != 5 {
		t.Errorf("expected default max open conns 5, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns != 2 {
		t.Errorf("expected default max idle conns 2, got %d", cfg.Database.MaxIdleConns)
	}
	if cfg.Face.ModelsDir != "./models" {
		t.Errorf("expected default models dir './models', got '%s'", cfg.Face.ModelsDir)
	}
	if cfg.Face.ModelsURL != defaultModelsURL {
		t.Errorf("expected default models URL, got '%s'", cfg.Face.ModelsURL)
	}
	if cfg.Face.MaxFrameSize != 1280 {
		t.Errorf("expected default max frame size 1280, got %d", cfg.Face.MaxFrameSize)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("expected default web port 8080, got %d", cfg.Web.Port)
	}
}

func TestLoad_SupabaseConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-key")

	cfg := Load()

	if cfg.Supabase.URL != "https://project.supabase.co" {
		t.Errorf("expected URL 'https://project.supabase.co', got '%s'", cfg.Supabase.URL)
	}
	if cfg.Supabase.ServiceKey != "service-key" {
		t.Errorf("expected service key 'service-key', got '%s'", cfg.Supabase.ServiceKey)
	}
	if err := cfg.Supabase.Validate(); err != nil {
		t.Errorf("expected valid supabase config, got %v", err)
	}
}

func TestLoad_SupabaseKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_KEY", "anon-key")

	cfg := Load()

	if cfg.Supabase.ServiceKey != "anon-key" {
		t.Errorf("expected fallback key 'anon-key', got '%s'", cfg.Supabase.ServiceKey)
	}
}

func TestSupabaseConfig_ValidateMissing(t *testing.T) {
	tests := []struct {
		name string
		cfg  SupabaseConfig
	}{
		{"empty", SupabaseConfig{}},
		{"missing key", SupabaseConfig{URL: "https://project.supabase.co"}},
		{"missing url", SupabaseConfig{ServiceKey: "key"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, ErrSupabaseNotConfigured) {
				t.Errorf("expected ErrSupabaseNotConfigured, got %v", err)
			}
		})
	}
}

func TestDatabaseConfig_Validate(t *testing.T) {
	cfg := DatabaseConfig{}
	if err := cfg.Validate(); !errors.Is(err, ErrDatabaseNotConfigured) {
		t.Errorf("expected ErrDatabaseNotConfigured, got %v", err)
	}

	cfg.URL = "postgres://localhost/clinic"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestLoad_InvalidIntegers(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not a number", "invalid"},
		{"negative", "-3"},
		{"zero", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATABASE_MAX_OPEN_CONNS", tt.value)
			t.Setenv("FACE_MAX_FRAME_SIZE", tt.value)

			cfg := Load()

			if cfg.Database.MaxOpenConns != 5 {
				t.Errorf("expected default 5 for %q, got %d", tt.value, cfg.Database.MaxOpenConns)
			}
			if cfg.Face.MaxFrameSize != 1280 {
				t.Errorf("expected default 1280 for %q, got %d", tt.value, cfg.Face.MaxFrameSize)
			}
		})
	}
}

func TestLoad_ModelManifest(t *testing.T) {
	cfg := Load()

	want := []string{
		"mmod_human_face_detector.dat",
		"shape_predictor_5_face_landmarks.dat",
		"dlib_face_recognition_resnet_model_v1.dat",
	}
	got := cfg.Face.ModelFiles()
	if len(got) != len(want) {
		t.Fatalf("expected %d model files, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("model[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	roles := map[string]bool{}
	for _, m := range cfg.Face.Models {
		roles[m.Role] = true
	}
	for _, role := range []string{"detector", "landmarks", "recognition"} {
		if !roles[role] {
			t.Errorf("expected manifest to contain role %q", role)
		}
	}
}

func TestLoad_FaceOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FACE_MODELS_URL", "https://cdn.example.com/models")
	t.Setenv("FACE_MODELS_DIR", "/var/lib/clinic/models")
	t.Setenv("FACE_MAX_FRAME_SIZE", "640")

	cfg := Load()

	if cfg.Face.ModelsURL != "https://cdn.example.com/models" {
		t.Errorf("unexpected models URL '%s'", cfg.Face.ModelsURL)
	}
	if cfg.Face.ModelsDir != "/var/lib/clinic/models" {
		t.Errorf("unexpected models dir '%s'", cfg.Face.ModelsDir)
	}
	if cfg.Face.MaxFrameSize != 640 {
		t.Errorf("expected max frame size 640, got %d", cfg.Face.MaxFrameSize)
	}
}

func TestLoad_AllowedOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEB_ALLOWED_ORIGINS", " https://clinic.example.com, ,https://admin.example.com ")

	cfg := Load()

	want := []string{"https://clinic.example.com", "https://admin.example.com"}
	if len(cfg.Web.AllowedOrigins) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.Web.AllowedOrigins)
	}
	for i := range want {
		if cfg.Web.AllowedOrigins[i] != want[i] {
			t.Errorf("origin %d: expected %q, got %q", i, want[i], cfg.Web.AllowedOrigins[i])
		}
	}
}

func TestLoad_APIToken(t *testing.T) {
	clearEnv(t)
	if token := Load().Web.APIToken; token != "" {
		t.Errorf("expected empty API token by default, got %q", token)
	}

	t.Setenv("WEB_API_TOKEN", "kiosk-secret")
	if token := Load().Web.APIToken; token != "kiosk-secret" {
		t.Errorf("expected API token 'kiosk-secret', got %q", token)
	}
}
