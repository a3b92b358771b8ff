package config

import "testing"

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Gemini model = %q", cfg.Gemini.Model)
	}
	if cfg.OpenAI.RealtimeModel != "gpt-realtime" {
		t.Errorf("Realtime model = %q", cfg.OpenAI.RealtimeModel)
	}
	if cfg.Perplexity.BaseURL != "https://api.perplexity.ai" {
		t.Errorf("Perplexity base URL = %q", cfg.Perplexity.BaseURL)
	}
	if cfg.Redis.Enabled {
		t.Error("Redis must default to disabled")
	}
}

func TestLoadRequiresGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("missing GEMINI_API_KEY must fail validation")
	}
}

func TestParseCommaSeparated(t *testing.T) {
	got := parseCommaSeparated(" http://a.example , http://b.example ,, ")
	if len(got) != 2 || got[0] != "http://a.example" || got[1] != "http://b.example" {
		t.Errorf("parseCommaSeparated = %v", got)
	}
}
