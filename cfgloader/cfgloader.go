// Package cfgloader loads, defaults and validates the service configuration at startup.
package cfgloader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/code19m/errx"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvProduction = "production"
	EnvStaging    = "staging"
	EnvDev        = "dev"
	EnvLocal      = "local"
	EnvTest       = "test"

	codeInvalidConfig = "INVALID_CONFIG"
)

// MustLoad reads ./config/${ENVIRONMENT}.yaml (directory overridable with WithDir), expands ${VAR}
// references from the environment and an optional .env file, applies `default` tags, validates
// `validate` tags and prints the result with `mask:"true"` fields hidden.
// Any failure is logged and terminates the process.
//
//	type Config struct {
//	    Bucket string `yaml:"bucket" validate:"required"`
//	    Port   int    `yaml:"port" default:"8080"`
//	}
func MustLoad[T any](opts ...Option) T {
	o := Options{Dir: "./config"}
	for _, opt := range opts {
		opt(&o)
	}

	var zero T
	if reflect.ValueOf(zero).Kind() == reflect.Ptr {
		exit("[cfgloader]: type argument must not be a pointer")
	}

	_ = godotenv.Load()

	env := os.Getenv("ENVIRONMENT")
	if !slices.Contains([]string{EnvProduction, EnvStaging, EnvDev, EnvLocal, EnvTest}, env) {
		exit("[cfgloader]: ENVIRONMENT env variable is not set or invalid. Choices are: production, staging, dev, local, test")
	}

	cfg, err := Load[T](filepath.Join(o.Dir, env+".yaml"))
	if err != nil {
		exit(fmt.Sprintf("[cfgloader]: %s config: %v", env, err))
	}

	if !o.Silent {
		printConfig(cfg)
	}
	return cfg
}

// Load is the error-returning core of MustLoad for a single file.
func Load[T any](path string) (T, error) {
	var cfg T

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errx.Wrap(err, errx.WithCode(codeInvalidConfig), errx.WithDetails(errx.D{"path": path}))
	}

	data = []byte(os.ExpandEnv(string(data)))

	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errx.Wrap(err, errx.WithCode(codeInvalidConfig))
	}

	if err = defaults.Set(&cfg); err != nil {
		return cfg, errx.Wrap(err, errx.WithCode(codeInvalidConfig))
	}

	if err = validate(&cfg); err != nil {
		return cfg, errx.Wrap(err)
	}

	return cfg, nil
}

func validate(cfg any) error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors) //nolint:errorlint // validator returns the concrete type
	if !ok {
		return errx.Wrap(err, errx.WithCode(codeInvalidConfig))
	}

	failed := make([]string, 0, len(errs))
	for _, fe := range errs {
		tag := fe.Tag()
		if fe.Param() != "" {
			tag += "=" + fe.Param()
		}
		failed = append(failed, fmt.Sprintf("%s: %s", fe.Namespace(), tag))
	}

	return errx.New(
		"invalid fields -> "+strings.Join(failed, ",  "),
		errx.WithCode(codeInvalidConfig),
		errx.WithType(errx.T_Validation),
	)
}

func exit(msg string) {
	slog.Error(msg)
	os.Exit(1)
}
