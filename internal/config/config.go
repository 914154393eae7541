// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

type Config struct {
	// PhraseTable is the DynamoDB table overlaying the embedded phrases.
	// Empty disables the overlay.
	PhraseTable string `env:"PHRASE_TABLE"`
	// ParamPrefix enables SSM overrides read from "{prefix}/wikipedia".
	ParamPrefix string `env:"PARAM_PREFIX" validate:"omitempty,startswith=/"`

	WikipediaLanguage string `env:"WIKIPEDIA_LANGUAGE" envDefault:"en" validate:"required,max=20"`
	WikipediaBaseURL  string `env:"WIKIPEDIA_BASE_URL" validate:"omitempty,url"`
	UserAgent         string `env:"USER_AGENT"`

	LookupTimeout    time.Duration `env:"LOOKUP_TIMEOUT" envDefault:"8s" validate:"gt=0"`
	MaxMessageLength int           `env:"MAX_MESSAGE_LENGTH" envDefault:"300" validate:"gt=0"`
	ListenAddr       string        `env:"LISTEN_ADDR" envDefault:":8080" validate:"required"`
	Debug            bool          `env:"DEBUG"`

	LambdaRuntimeAPI string `env:"AWS_LAMBDA_RUNTIME_API"`
}

// InLambda reports whether the process runs inside the Lambda runtime.
func (c Config) InLambda() bool {
	return c.LambdaRuntimeAPI != ""
}

// Load parses the process environment.
func Load() (Config, error) {
	return load(env.Options{})
}

// LoadFromMap parses environ instead of the process environment.
func LoadFromMap(environ map[string]string) (Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	cfg.ParamPrefix = strings.TrimRight(strings.TrimSpace(cfg.ParamPrefix), "/")
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() func(Config) error {
	v := validator.New()
	// Report fields by their environment variable name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("env"), ",")
		return name
	})

	return func(cfg Config) error {
		err := v.Struct(cfg)
		if err == nil {
			return nil
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("config: validate: %w", err)
		}
		var result *multierror.Error
		for _, fe := range fieldErrs {
			result = multierror.Append(result, fmt.Errorf("%s: invalid value %q (%s)", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag()))
		}
		return fmt.Errorf("config: invalid environment: %w", result.ErrorOrNil())
	}
}
