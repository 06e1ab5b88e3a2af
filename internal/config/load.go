package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/basicflag"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CONFIG_"

// New parses the command line and loads the configuration in the order
// defaults, config file, flags, environment.
func New(args []string, writer io.Writer) (Config, error) {
	flagSet := FlagSet(args[0], writer)
	if err := flagSet.Parse(args[1:]); err != nil {
		return Config{}, err //nolint:wrapcheck
	}

	if versionFlag := flagSet.Lookup("version"); versionFlag != nil && versionFlag.Value.String() == "true" {
		return Config{}, ErrVersion
	}

	configFile := flagSet.Lookup("config").Value.String()

	return Load(configFile, flagSet)
}

// Load merges all configuration sources into a validated Config.
func Load(configFile string, flagSet *flag.FlagSet) (Config, error) {
	var err error

	k := koanf.New(".")

	if err = k.Load(structs.Provider(Defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("loading defaults: %w", err)
	}

	if configFile != "" {
		if err = k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("file provider: %w", err)
		}
	}

	if flagSet != nil {
		if err = k.Load(basicflag.Provider(flagSet, ".", &basicflag.Opt{KeyMap: k}), nil); err != nil {
			return Config{}, fmt.Errorf("flag provider: %w", err)
		}
	}

	err = k.Load(env.ProviderWithValue(envPrefix, ".",
		func(envKey string, envValue string) (string, interface{}) {
			key := strings.ToLower(strings.TrimPrefix(envKey, envPrefix))
			key = strings.ReplaceAll(key, "__", "-")
			key = strings.ReplaceAll(key, "_", ".")

			return key, envValue
		}), nil,
	)
	if err != nil {
		return Config{}, fmt.Errorf("env provider: %w", err)
	}

	var conf Config

	unmarshalConf := koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Metadata:         nil,
			Result:           &conf,
			WeaklyTypedInput: true,
		},
	}

	if err = k.UnmarshalWithConf("", &conf, unmarshalConf); err != nil {
		return Config{}, fmt.Errorf("error unmarshal config: %w", err)
	}

	conf.ConfigFile = configFile

	if err = Validate(conf); err != nil {
		return Config{}, fmt.Errorf("validation error: %w", err)
	}

	return conf, nil
}

// IsErrHelp reports whether the error is the flag package's help sentinel.
func IsErrHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
