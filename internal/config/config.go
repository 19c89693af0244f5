// Package config loads the immutable startup configuration for neg3ctl: a
// YAML file overridden by NEG3_-prefixed environment variables, bound with
// viper the way the rest of the retrieval pack binds its own service config.
// The result is computed once at process start and handed down to every
// task; nothing re-reads it at runtime (see design note on global mutable
// configuration).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Mode selects which half of the bootstrap protocol this process runs.
type Mode int

const (
	ModeCoordinator Mode = 0
	ModeModem       Mode = 1
)

// G3 carries the G3-PLC stack parameters: PAN identity, spectrum band, and
// the cryptographic material used during bootstrap.
type G3 struct {
	Mode                    Mode   `mapstructure:"mode" yaml:"mode"`
	PanID                   uint16 `mapstructure:"pan_id" yaml:"pan_id"`
	Band                    uint8  `mapstructure:"band" yaml:"band"`
	PSK                     []byte `mapstructure:"psk" yaml:"psk"`
	GMK                     []byte `mapstructure:"gmk" yaml:"gmk"`
	RekeyGMK                []byte `mapstructure:"rekey_gmk" yaml:"rekey_gmk"`
	ContextInformationTable0 []byte `mapstructure:"context_information_table_0" yaml:"context_information_table_0"`
	ContextInformationTable1 []byte `mapstructure:"context_information_table_1" yaml:"context_information_table_1"`
	MaxHops                 uint8  `mapstructure:"max_hops" yaml:"max_hops"`
	IdsARIB                 []byte `mapstructure:"ids_arib" yaml:"ids_arib"`
	IdsCenelecFCC           []byte `mapstructure:"ids_cenelec_fcc" yaml:"ids_cenelec_fcc"`
}

// Serial carries the host serial link parameters.
type Serial struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Speed uint32 `mapstructure:"speed" yaml:"speed"`
}

// Network carries the IPv6 bridge parameters.
type Network struct {
	Tun              string `mapstructure:"tun" yaml:"tun"`
	UlaNetPrefix     []byte `mapstructure:"ula_net_prefix" yaml:"ula_net_prefix"`
	UlaNetPrefixLen  uint8  `mapstructure:"ula_net_prefix_len" yaml:"ula_net_prefix_len"`
	UlaHostPrefix    []byte `mapstructure:"ula_host_prefix" yaml:"ula_host_prefix"`
	UlaHostPrefixLen uint8  `mapstructure:"ula_host_prefix_len" yaml:"ula_host_prefix_len"`
	LocalNetPrefix   []byte `mapstructure:"local_net_prefix" yaml:"local_net_prefix"`
	LocalNetPrefixLen uint8 `mapstructure:"local_net_prefix_len" yaml:"local_net_prefix_len"`
}

// Config is the complete immutable startup configuration. One value is
// computed by Load and passed down to every task; no task re-reads it.
type Config struct {
	G3      G3      `mapstructure:"g3" yaml:"g3"`
	Serial  Serial  `mapstructure:"serial" yaml:"serial"`
	Network Network `mapstructure:"network" yaml:"network"`
}

const envPrefix = "NEG3"

// Load reads configuration from the YAML file at path (if non-empty and
// present) overridden by NEG3_-prefixed environment variables, and returns
// the bound, validated Config.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: reading %s: %w", path, err)
			}
		}
	}

	applyDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("serial.speed", 230400)
	v.SetDefault("g3.max_hops", 10)
	v.SetDefault("network.ula_net_prefix_len", 64)
	v.SetDefault("network.ula_host_prefix_len", 48)
	v.SetDefault("network.local_net_prefix_len", 64)
}

func validate(cfg *Config) error {
	if cfg.Serial.Name == "" {
		return fmt.Errorf("serial.name is required")
	}
	if cfg.G3.Mode != ModeCoordinator && cfg.G3.Mode != ModeModem {
		return fmt.Errorf("g3.mode must be 0 (coordinator) or 1 (modem), got %d", cfg.G3.Mode)
	}
	if len(cfg.G3.PSK) != 16 {
		return fmt.Errorf("g3.psk must be 16 bytes, got %d", len(cfg.G3.PSK))
	}
	if cfg.G3.Mode == ModeCoordinator && len(cfg.G3.GMK) != 16 {
		return fmt.Errorf("g3.gmk must be 16 bytes for a coordinator, got %d", len(cfg.G3.GMK))
	}
	return nil
}
