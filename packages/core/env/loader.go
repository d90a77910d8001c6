package env

import "os"

type Environment struct {
	Name      string
	Variables map[string]any
}

// LoadEnvironment picks envName out of the environments configured in
// adminspec.yaml. An unknown name yields an empty environment.
func LoadEnvironment(envName string, configEnvs map[string]map[string]any) *Environment {
	env := &Environment{
		Name:      envName,
		Variables: make(map[string]any),
	}
	for k, v := range configEnvs[envName] {
		env.Variables[k] = v
	}
	return env
}

func MergeVariables(sources ...map[string]any) map[string]any {
	result := make(map[string]any)
	for _, src := range sources {
		for k, v := range src {
			result[k] = v
		}
	}
	return result
}

// LoadSystemEnv returns the process environment variables starting with
// prefix, keyed without it. An empty prefix returns everything.
func LoadSystemEnv(prefix string) map[string]any {
	result := make(map[string]any)
	for _, e := range os.Environ() {
		key, value, ok := cutEnv(e)
		if !ok {
			continue
		}
		if prefix == "" {
			result[key] = value
		} else if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			result[key[len(prefix):]] = value
		}
	}
	return result
}

func cutEnv(e string) (string, string, bool) {
	for i := 0; i < len(e); i++ {
		if e[i] == '=' {
			return e[:i], e[i+1:], true
		}
	}
	return "", "", false
}
