package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Path: "./docquery.db"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := validConfig()
		cfg.HTTP.Port = port
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for port %d", port)
		}
	}
}

func TestValidate_MissingDatabasePath(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database path")
	}
}

func TestValidate_LLMTimeoutMustExceedExecTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.TimeoutSec = 5
	cfg.Query.ExecTimeoutSec = 5

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when llm timeout does not exceed exec timeout")
	}
	if !strings.Contains(err.Error(), "llm.timeout_sec") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Query.RatePerMinute != 10 || cfg.Query.RatePerHour != 100 {
		t.Errorf("unexpected rate defaults: %d/%d", cfg.Query.RatePerMinute, cfg.Query.RatePerHour)
	}
	if cfg.Query.ExecTimeoutSec != 5 || cfg.LLM.TimeoutSec != 30 {
		t.Errorf("unexpected timeout defaults: %d/%d", cfg.Query.ExecTimeoutSec, cfg.LLM.TimeoutSec)
	}
	if cfg.Query.MaxRows != 100 {
		t.Errorf("expected max rows 100, got %d", cfg.Query.MaxRows)
	}
	if cfg.Query.SearchTopK != 10 || cfg.Query.SearchMinScore != 0.1 {
		t.Errorf("unexpected search defaults: %d/%f", cfg.Query.SearchTopK, cfg.Query.SearchMinScore)
	}
	if cfg.Audit.RingSize != 256 || cfg.Audit.Stream != "docquery:audit" {
		t.Errorf("unexpected audit defaults: %d/%q", cfg.Audit.RingSize, cfg.Audit.Stream)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{Query: QueryConfig{RatePerMinute: 3, MaxRows: 25}}
	cfg.ApplyDefaults()
	if cfg.Query.RatePerMinute != 3 || cfg.Query.MaxRows != 25 {
		t.Errorf("explicit values overwritten: %+v", cfg.Query)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DOCQUERY_TEST_VAR", "hello")

	got := string(expandEnvVars([]byte("value: ${DOCQUERY_TEST_VAR}")))
	if got != "value: hello" {
		t.Errorf("unexpected expansion: %q", got)
	}
}

func TestExpandEnvVars_Default(t *testing.T) {
	t.Setenv("DOCQUERY_UNSET_VAR", "")

	got := string(expandEnvVars([]byte("port: ${DOCQUERY_UNSET_VAR:-8080}")))
	if got != "port: 8080" {
		t.Errorf("unexpected default expansion: %q", got)
	}

	t.Setenv("DOCQUERY_UNSET_VAR", "9090")
	got = string(expandEnvVars([]byte("port: ${DOCQUERY_UNSET_VAR:-8080}")))
	if got != "port: 9090" {
		t.Errorf("set variable must win over default: %q", got)
	}
}

func TestExpandEnvVars_UnsetWithoutDefaultIsEmpty(t *testing.T) {
	got := string(expandEnvVars([]byte("key: ${DOCQUERY_DEFINITELY_UNSET_XYZ}")))
	if got != "key: " {
		t.Errorf("unexpected expansion: %q", got)
	}
}
