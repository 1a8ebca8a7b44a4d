package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindConfig_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	os.WriteFile(path, []byte("listen:\n  port: 9999\n"), 0600)

	got, err := FindConfig(path)
	if err != nil {
		t.Fatalf("FindConfig(%q) error: %v", path, err)
	}
	if got != path {
		t.Errorf("FindConfig(%q) = %q, want %q", path, got, path)
	}
}

func TestFindConfig_ExplicitMissing(t *testing.T) {
	_, err := FindConfig("/nonexistent/wolfe.yaml")
	if err == nil {
		t.Fatal("FindConfig with missing explicit path should error")
	}
}

func TestFindConfig_CWD(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wolfe.yaml")
	os.WriteFile(path, []byte("listen:\n  port: 8080\n"), 0600)

	orig, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(orig)

	got, err := FindConfig("")
	if err != nil {
		t.Fatalf("FindConfig(\"\") error: %v", err)
	}
	if got != "wolfe.yaml" {
		t.Errorf("FindConfig(\"\") = %q, want %q", got, "wolfe.yaml")
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wolfe.yaml")
	os.WriteFile(path, []byte("openai:\n  api_key: ${WOLFE_TEST_KEY}\n"), 0600)
	os.Setenv("WOLFE_TEST_KEY", "sk-test-123")
	defer os.Unsetenv("WOLFE_TEST_KEY")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-test-123" {
		t.Errorf("api_key = %q, want %q", cfg.OpenAI.APIKey, "sk-test-123")
	}
}

func TestLoad_DefaultsPreserved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wolfe.yaml")
	os.WriteFile(path, []byte("log_level: debug\n"), 0600)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Store.MongoURL != "mongodb://localhost:27017" {
		t.Errorf("mongo_url default = %q", cfg.Store.MongoURL)
	}
	if cfg.Store.Database != "hotel_agent_db" {
		t.Errorf("database default = %q", cfg.Store.Database)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("model default = %q", cfg.OpenAI.Model)
	}
	if cfg.Agent.MaxToolIterations != 8 {
		t.Errorf("max_tool_iterations default = %d", cfg.Agent.MaxToolIterations)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"", false},
		{"info", false},
		{"TRACE", false},
		{"debug", false},
		{"warn", false},
		{"warning", false},
		{"error", false},
		{"verbose", true},
	}
	for _, tc := range tests {
		_, err := ParseLogLevel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
	}
}
