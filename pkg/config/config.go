// Package config provides YAML configuration loading with environment variable override.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML configuration file into the given struct.
// It also applies environment variable overrides using struct tags.
func Load(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	// Expand environment variables in the YAML
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), out); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	return ApplyEnv(out)
}

// LoadOrDefault tries to load config from path. A missing file keeps the
// values already in out; env overrides are applied either way.
func LoadOrDefault(path string, out any) error {
	if path == "" {
		return ApplyEnv(out)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return ApplyEnv(out)
	}
	return Load(path, out)
}

// SplitList splits a list given as one string. Items are separated by commas
// or newlines; the two-character sequence `\n` counts as a newline so that
// lists survive single-line env files.
func SplitList(raw string) []string {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), `\n`, "\n")
	var parts []string
	for _, line := range strings.Split(raw, "\n") {
		for _, p := range strings.Split(line, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
	}
	return parts
}

// ApplyEnv sets struct fields from environment variables.
// It uses the `env` struct tag to determine the env var name. A value that
// does not parse leaves its field untouched and is reported in the returned
// error, which joins every such variable.
func ApplyEnv(v any) error {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	var errs []error

	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := val.Field(i)

		// Recurse into struct fields
		if fieldVal.Kind() == reflect.Struct {
			if fieldVal.CanAddr() {
				if err := ApplyEnv(fieldVal.Addr().Interface()); err != nil {
					errs = append(errs, err)
				}
			}
			continue
		}

		envTag := field.Tag.Get("env")
		if envTag == "" {
			continue
		}

		envVal, ok := os.LookupEnv(envTag)
		if !ok || strings.TrimSpace(envVal) == "" {
			continue
		}

		if !fieldVal.CanSet() {
			continue
		}

		trimmed := strings.TrimSpace(envVal)
		switch fieldVal.Kind() {
		case reflect.String:
			fieldVal.SetString(envVal)
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(trimmed, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("env %s=%q: expected an integer", envTag, envVal))
				continue
			}
			fieldVal.SetInt(n)
		case reflect.Float64:
			f, err := strconv.ParseFloat(trimmed, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("env %s=%q: expected a number", envTag, envVal))
				continue
			}
			fieldVal.SetFloat(f)
		case reflect.Bool:
			b, err := strconv.ParseBool(trimmed)
			if err != nil {
				errs = append(errs, fmt.Errorf("env %s=%q: expected true or false", envTag, envVal))
				continue
			}
			fieldVal.SetBool(b)
		case reflect.Slice:
			if fieldVal.Type().Elem().Kind() == reflect.String {
				fieldVal.Set(reflect.ValueOf(SplitList(envVal)))
			}
		}
	}
	return errors.Join(errs...)
}
