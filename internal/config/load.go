package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CLIMATE_PREDICT_EPOCHS
// for predict.epochs or CLIMATE_STORAGE_DSN for storage.dsn.
const EnvPrefix = "CLIMATE"

// Load builds a Config from Default, then the file at path (JSON or YAML by
// extension; empty path skips it), then environment overrides. envFile is
// loaded into the process environment first; a missing envFile is ignored.
// Variables already set in the environment win over the dotenv file.
func Load(path, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load env file %s: %w", envFile, err)
		}
	}

	raw := map[string]any{}
	if path != "" {
		var err error
		if raw, err = readFile(path); err != nil {
			return Config{}, err
		}
	}
	applyEnv(raw, os.LookupEnv)

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		if path != "" {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func readFile(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	raw := map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(b, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &raw)
	default:
		return nil, fmt.Errorf("config: %s: unsupported extension %q (want .json, .yaml or .yml)", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func decode(raw map[string]any, cfg *Config) error {
	// mapstructure writes slices element-wise over the existing value, so a
	// shorter list would keep the default's tail.
	clearSlices(raw, reflect.ValueOf(cfg).Elem())

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// applyEnv copies CLIMATE_<PATH> variables onto raw for every leaf key of
// Config, where PATH is the dotted key upper-cased with dots as underscores.
func applyEnv(raw map[string]any, lookup func(string) (string, bool)) {
	for _, path := range LeafKeys() {
		name := EnvName(path)
		v, ok := lookup(name)
		if !ok {
			continue
		}
		setPath(raw, strings.Split(path, "."), v)
	}
}

// EnvName returns the environment variable that overrides a dotted key.
func EnvName(path string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
}

// LeafKeys lists the dotted keys of every non-struct field of Config.
func LeafKeys() []string {
	var out []string
	walk(reflect.TypeOf(Config{}), "", &out)
	return out
}

func walk(t reflect.Type, prefix string, out *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := fieldKey(f)
		if !ok {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct {
			walk(f.Type, key, out)
			continue
		}
		*out = append(*out, key)
	}
}

func clearSlices(raw map[string]any, v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := fieldKey(f)
		if !ok {
			continue
		}
		val, present := raw[tag]
		if !present {
			continue
		}
		switch f.Type.Kind() {
		case reflect.Struct:
			if sub, ok := val.(map[string]any); ok {
				clearSlices(sub, v.Field(i))
			}
		case reflect.Slice:
			v.Field(i).Set(reflect.Zero(f.Type))
		}
	}
}

// fieldKey returns the mapstructure key of f, or false when f is skipped.
func fieldKey(f reflect.StructField) (string, bool) {
	tag := strings.Split(f.Tag.Get("mapstructure"), ",")[0]
	if tag == "-" || !f.IsExported() {
		return "", false
	}
	if tag == "" {
		tag = strings.ToLower(f.Name)
	}
	return tag, true
}

func setPath(m map[string]any, path []string, v any) {
	for _, k := range path[:len(path)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}
