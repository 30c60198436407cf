package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load unmarshals and validates the configuration held by v. BindEnv,
// SetDefaults and optionally BindFlags must have been called on v already.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	err := v.UnmarshalExact(cfg)
	if err != nil {
		return nil, err
	}

	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		return nil, err
	}

	err = cfg.Check()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
