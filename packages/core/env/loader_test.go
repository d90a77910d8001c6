package env

import "testing"

func TestLoadEnvironment(t *testing.T) {
	envs := map[string]map[string]any{
		"dev":     {"baseUrl": "http://localhost:8000"},
		"staging": {"baseUrl": "https://staging.example.com", "locale": "de"},
	}

	env := LoadEnvironment("staging", envs)
	if env.Name != "staging" || env.Variables["locale"] != "de" {
		t.Errorf("LoadEnvironment() = %+v", env)
	}

	env = LoadEnvironment("prod", envs)
	if len(env.Variables) != 0 {
		t.Errorf("unknown environment must be empty, got %v", env.Variables)
	}

	env = LoadEnvironment("dev", nil)
	if len(env.Variables) != 0 {
		t.Errorf("nil environments must be empty, got %v", env.Variables)
	}
}

func TestMergeVariables(t *testing.T) {
	got := MergeVariables(
		map[string]any{"a": "1", "b": "1"},
		nil,
		map[string]any{"b": "2"},
	)
	if got["a"] != "1" || got["b"] != "2" {
		t.Errorf("MergeVariables() = %v", got)
	}
}

func TestLoadSystemEnv(t *testing.T) {
	t.Setenv("ADMINSPEC_VAR_HOST", "example.com")

	got := LoadSystemEnv("ADMINSPEC_VAR_")
	if got["HOST"] != "example.com" {
		t.Errorf("LoadSystemEnv() = %v", got)
	}
}
