package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PROVIDER_BASE_URL", "http://provider.local")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Service.Port != "8087" {
		t.Errorf("Service.Port = %q, want 8087", cfg.Service.Port)
	}
	if cfg.Phone.CountryCode != "212" {
		t.Errorf("Phone.CountryCode = %q, want 212", cfg.Phone.CountryCode)
	}
	if cfg.Dispatch.Workers != 8 {
		t.Errorf("Dispatch.Workers = %d, want 8", cfg.Dispatch.Workers)
	}
	if cfg.Redis.TokenTTL.Hours() != 24 {
		t.Errorf("Redis.TokenTTL = %s, want 24h", cfg.Redis.TokenTTL)
	}
}

func TestLoad_MissingProviderURL(t *testing.T) {
	t.Setenv("PROVIDER_BASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded without PROVIDER_BASE_URL, want error")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("PROVIDER_BASE_URL", "http://provider.local")
	t.Setenv("PROVIDER_TOKEN_TTL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded with invalid PROVIDER_TOKEN_TTL, want error")
	}
}
