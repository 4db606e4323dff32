package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidConfig is returned when the provided config is not a pointer to a struct
	// that embeds EnvConfig.
	ErrInvalidConfig = errors.New("config must be a pointer to a struct embedding EnvConfig")

	// ErrVarNotSet is returned when a required environment variable is not set and has no default.
	ErrVarNotSet = errors.New("env var not set")

	// ErrUnsupportedVarType is returned when trying to parse an environment variable
	// into an unsupported Go type.
	ErrUnsupportedVarType = errors.New("unsupported env var type")
)

//nolint:gochecknoglobals
var durationType = reflect.TypeOf(time.Duration(0))

// EnvConfig is a base type that must be embedded in configuration structs
// to enable environment variable parsing.
type EnvConfig struct {
	namespace string
}

// Namespace returns the prefix the configuration was parsed with.
func (c EnvConfig) Namespace() string {
	return c.namespace
}

// Validator is implemented by configuration structs that check their values after parsing.
type Validator interface {
	Validate() error
}

//nolint:varnamelen
func getEnvConfig(cfg any) (*EnvConfig, error) {
	v := reflect.ValueOf(cfg)

	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, ErrInvalidConfig
	}

	v = v.Elem()
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		//nolint:exhaustruct,forcetypeassert
		if field.Anonymous && field.Type == reflect.TypeOf(EnvConfig{}) {
			if ev := v.Field(i); ev.CanAddr() {
				return ev.Addr().Interface().(*EnvConfig), nil
			}
		}
	}

	return nil, ErrInvalidConfig
}

// Parse loads configuration values from environment variables into the provided struct.
// The struct must embed EnvConfig and use `env` tags to specify variable names.
// The namespace parameter is used as a prefix for all environment variables; shorter
// namespace prefixes are tried as fallbacks, so APP_SVC_X falls back to APP_X and X.
// Supports string, int, int64, bool and time.Duration fields. Durations accept Go duration
// syntax ("1h30m") or a bare number of seconds. Nested structs are supported and may set
// an `envPrefix` tag.
// If cfg or any nested struct implements Validator, it is validated after parsing.
func Parse(ctx context.Context, cfg any, namespace string) error {
	envConfig, err := getEnvConfig(cfg)
	if err != nil {
		return fmt.Errorf("get env config: %w", err)
	}

	envConfig.namespace = namespace

	return parse(namespace, "", cfg)
}

func parse(namespace, prefix string, c any) error {
	t := reflect.TypeOf(c).Elem()
	v := reflect.ValueOf(c).Elem()

	for i := range t.NumField() {
		field := t.Field(i)
		structField := v.Field(i)

		if field.Type.Kind() == reflect.Struct && field.Type != durationType {
			if !structField.CanAddr() || !field.IsExported() && !field.Anonymous {
				continue
			}

			envPrefix := field.Tag.Get("envPrefix")

			if err := parse(namespace, prefix+envPrefix, structField.Addr().Interface()); err != nil {
				return err
			}

			continue
		}

		if err := parseField(namespace, prefix, field, structField); err != nil {
			return fmt.Errorf("parse field: %w", err)
		}
	}

	if validator, ok := c.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("validate %s: %w", t.Name(), err)
		}
	}

	return nil
}

func lookupEnv(namespace, prefix, envTag string) (string, string, bool) {
	var (
		nsParts   = strings.Split(namespace, "_")
		envName   string
		envValue  string
		envExists bool
	)

	for i := len(nsParts); i > 0; i-- {
		envName = strings.Join(nsParts[:i], "_")

		if envName != "" {
			envName += "_"
		}

		envName = envName + prefix + envTag
		envValue, envExists = os.LookupEnv(envName)

		if envExists {
			break
		}
	}

	return envName, envValue, envExists
}

//nolint:cyclop
func parseField(
	namespace string,
	prefix string,
	field reflect.StructField,
	structField reflect.Value,
) error {
	envTag := field.Tag.Get("env")
	defaultValue, hasDefault := field.Tag.Lookup("default")

	if envTag == "" {
		return nil
	}

	_, envValue, envExists := lookupEnv(namespace, prefix, envTag)
	if !envExists {
		if !hasDefault {
			return fmt.Errorf("%w: %s", ErrVarNotSet, prefix+envTag)
		}

		envValue = defaultValue
	}

	if field.Type == durationType {
		duration, err := parseDuration(envValue)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %w", envTag, err)
		}

		structField.SetInt(int64(duration))

		return nil
	}

	//nolint:exhaustive
	switch field.Type.Kind() {
	case reflect.String:
		structField.SetString(envValue)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(envValue, 10, field.Type.Bits())
		if err != nil {
			return fmt.Errorf("invalid type for %s: %w", envTag, err)
		}

		structField.SetInt(intValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(envValue)
		if err != nil {
			return fmt.Errorf("invalid type for %s: %w", envTag, err)
		}

		structField.SetBool(boolValue)
	default:
		return fmt.Errorf("%w: %s (%v)", ErrUnsupportedVarType, envTag, field.Type.Kind())
	}

	return nil
}

func parseDuration(value string) (time.Duration, error) {
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}

	return duration, nil
}
