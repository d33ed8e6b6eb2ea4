package config

import (
	"log"
	"reflect"

	"github.com/caarlos0/env/v6"

	"github.com/openbid/openbidapi/pkg/core"
)

type Config struct {
	API struct {
		Port int `env:"PORT" envDefault:"8081"`
	}
	App struct {
		LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`
		MetricsPort int    `env:"METRICS_PORT" envDefault:"9010"`
		// Admin may close any auction before its end time. Left empty, the
		// escape hatch is disabled and auctions close only after expiry.
		Admin core.AccountID `env:"ADMIN_ACCOUNT"`
		// GenesisPath points to a TOML file with initial account balances.
		GenesisPath string `env:"GENESIS_PATH"`
	}
}

func Load() Config {
	var c Config
	if err := env.ParseWithFuncs(&c, map[reflect.Type]env.ParserFunc{
		reflect.TypeOf(core.AccountID("")): func(v string) (interface{}, error) {
			id, err := core.ParseAccountID(v)
			return id, err
		}}); err != nil {
		log.Panicf("[‼️  Config parsing failed] %+v\n", err)
	}

	return c
}
