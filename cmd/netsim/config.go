// Copyright 2024 The netsim Authors
// This file is part of netsim.
//
// netsim is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// netsim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with netsim. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/aka2910/netsim/common"
	"github.com/aka2910/netsim/driver"
	"github.com/aka2910/netsim/internal/log"
)

// tomlSettings enforces strict-field-matching config: TOML keys match Go
// struct fields verbatim, and an unrecognized key is a ConfigError rather
// than a silently ignored typo.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		id := fmt.Sprintf("%s.%s", rt.String(), field)
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see godoc %s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("%w: field %q is not defined in %s%s", common.ErrConfigError, field, rt.String(), link)
	},
}

// appConfig is the full netsim configuration surface: the simulation
// parameters driver.Config carries, plus the ambient flags controlling
// logging, the optional stats API, and where finished-run artifacts go.
type appConfig struct {
	Driver driver.Config
	App    ambientConfig
}

type ambientConfig struct {
	Verbosity       int
	HTTP            string
	ArtifactsDir    string
	ArtifactsStore  string
	ArtifactsRemote string
	MetricsInfluxDB string
	MetricsDatabase string
}

func defaultAppConfig() appConfig {
	return appConfig{
		Driver: driver.DefaultConfig(),
		App: ambientConfig{
			Verbosity:    3,
			ArtifactsDir: "netsim-artifacts",
		},
	}
}

var (
	nFlag    = cli.IntFlag{Name: "n", Value: 10, Usage: "number of peers"}
	z0Flag   = cli.Float64Flag{Name: "z0", Value: 50, Usage: "percent of peers marked slow"}
	z1Flag   = cli.Float64Flag{Name: "z1", Value: 50, Usage: "percent of peers marked low-CPU"}
	ttxFlag  = cli.Float64Flag{Name: "Ttx", Value: 0.5, Usage: "mean inter-arrival of transactions per peer"}
	timeFlag = cli.Float64Flag{Name: "time", Value: 100, Usage: "simulation horizon in simulated time units"}
	iFlag    = cli.Float64Flag{Name: "I", Value: 0.5, Usage: "mean block inter-arrival"}
	seedFlag = cli.Int64Flag{Name: "seed", Value: 1, Usage: "RNG seed"}

	verbosityFlag = cli.IntFlag{Name: "verbosity", Value: 3, Usage: "log verbosity: 0=error .. 4=trace"}
	httpFlag      = cli.StringFlag{Name: "http", Usage: "bind address for the read-only stats API (disabled if empty)"}
	artifactsDir   = cli.StringFlag{Name: "artifacts.dir", Value: "netsim-artifacts", Usage: "local directory for per-peer artifacts"}
	artifactsStore = cli.StringFlag{Name: "artifacts.store", Usage: "path to a LevelDB database to also persist artifacts into"}
	artifactsURL   = cli.StringFlag{Name: "artifacts.remote", Usage: "Azure Blob container URL to also upload artifacts to (reads credentials from AZURE_STORAGE_ACCOUNT/AZURE_STORAGE_KEY)"}
	influxFlag     = cli.StringFlag{Name: "metrics.influxdb", Usage: "InfluxDB endpoint to push peer counters to"}
	configFlag     = cli.StringFlag{Name: "config", Usage: "TOML configuration file"}
)

var runFlags = []cli.Flag{
	nFlag, z0Flag, z1Flag, ttxFlag, timeFlag, iFlag, seedFlag,
	verbosityFlag, httpFlag, artifactsDir, artifactsStore, artifactsURL, influxFlag, configFlag,
}

// loadConfig builds an appConfig from defaults, an optional --config TOML
// file, and CLI flag overrides, in that precedence order (lowest to
// highest).
func loadConfig(ctx *cli.Context) (appConfig, error) {
	cfg := defaultAppConfig()
	if path := ctx.String(configFlag.Name); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("%w: opening config file: %v", common.ErrConfigError, err)
		}
		defer f.Close()
		if err := tomlSettings.NewDecoder(f).Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("%w: decoding config file: %v", common.ErrConfigError, err)
		}
	}

	if ctx.IsSet(nFlag.Name) {
		cfg.Driver.N = ctx.Int(nFlag.Name)
	}
	if ctx.IsSet(z0Flag.Name) {
		cfg.Driver.Z0 = ctx.Float64(z0Flag.Name)
	}
	if ctx.IsSet(z1Flag.Name) {
		cfg.Driver.Z1 = ctx.Float64(z1Flag.Name)
	}
	if ctx.IsSet(ttxFlag.Name) {
		cfg.Driver.Ttx = ctx.Float64(ttxFlag.Name)
	}
	if ctx.IsSet(timeFlag.Name) {
		cfg.Driver.Time = ctx.Float64(timeFlag.Name)
	}
	if ctx.IsSet(iFlag.Name) {
		cfg.Driver.I = ctx.Float64(iFlag.Name)
	}
	if ctx.IsSet(seedFlag.Name) {
		cfg.Driver.Seed = ctx.Int64(seedFlag.Name)
	}
	if ctx.IsSet(verbosityFlag.Name) {
		cfg.App.Verbosity = ctx.Int(verbosityFlag.Name)
	}
	if ctx.IsSet(httpFlag.Name) {
		cfg.App.HTTP = ctx.String(httpFlag.Name)
	}
	if ctx.IsSet(artifactsDir.Name) {
		cfg.App.ArtifactsDir = ctx.String(artifactsDir.Name)
	}
	if ctx.IsSet(artifactsStore.Name) {
		cfg.App.ArtifactsStore = ctx.String(artifactsStore.Name)
	}
	if ctx.IsSet(artifactsURL.Name) {
		cfg.App.ArtifactsRemote = ctx.String(artifactsURL.Name)
	}
	if ctx.IsSet(influxFlag.Name) {
		cfg.App.MetricsInfluxDB = ctx.String(influxFlag.Name)
	}

	if cfg.Driver.N <= 0 {
		return cfg, fmt.Errorf("%w: --n must be positive, got %d", common.ErrConfigError, cfg.Driver.N)
	}

	log.SetLevel(log.Level(cfg.App.Verbosity))
	return cfg, nil
}
