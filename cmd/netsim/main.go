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

// Command netsim runs the P2P currency network simulator: it builds a
// genesis block, a peer set, and an overlay network from the flags below,
// runs the discrete-event scheduler to a horizon, and writes per-peer
// block-tree artifacts.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/aka2910/netsim/api"
	"github.com/aka2910/netsim/driver"
	"github.com/aka2910/netsim/internal/log"
	"github.com/aka2910/netsim/metrics"
	"github.com/aka2910/netsim/report"
)

func main() {
	app := cli.NewApp()
	app.Name = "netsim"
	app.Usage = "discrete-event simulator for a permissionless Nakamoto-style currency network"
	app.Flags = runFlags
	app.Action = runCommand
	app.Commands = []cli.Command{consoleCommand}

	if err := app.Run(os.Args); err != nil {
		log.Error("netsim: fatal error", "err", err)
		os.Exit(1)
	}
}

func runCommand(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	d := driver.New(cfg.Driver)

	d.AddSink(report.LocalFiles{Dir: cfg.App.ArtifactsDir})

	if cfg.App.ArtifactsStore != "" {
		store, err := report.OpenStore(cfg.App.ArtifactsStore)
		if err != nil {
			return fmt.Errorf("netsim: %w", err)
		}
		defer store.Close()
		d.AddSink(store)
	}

	if cfg.App.ArtifactsRemote != "" {
		account := os.Getenv("AZURE_STORAGE_ACCOUNT")
		key := os.Getenv("AZURE_STORAGE_KEY")
		if account == "" || key == "" {
			log.Warn("netsim: --artifacts.remote set but AZURE_STORAGE_ACCOUNT/AZURE_STORAGE_KEY are not set; skipping remote sink")
		} else {
			remote, err := report.NewRemote(cfg.App.ArtifactsRemote, account, key)
			if err != nil {
				return fmt.Errorf("netsim: %w", err)
			}
			d.AddSink(remote)
		}
	}

	var pusher *metrics.Pusher
	if cfg.App.MetricsInfluxDB != "" {
		pusher, err = metrics.NewPusher(cfg.App.MetricsInfluxDB, cfg.App.MetricsDatabase, 5*time.Second)
		if err != nil {
			return fmt.Errorf("netsim: %w", err)
		}
		defer pusher.Close()
	}

	if err := d.Run(); err != nil {
		return fmt.Errorf("netsim: run failed: %w", err)
	}

	if pusher != nil {
		if err := pusher.Push(context.Background(), d.Peers()); err != nil {
			log.Warn("netsim: final metrics push failed", "err", err)
		}
	}

	if host, err := metrics.SampleHost(); err == nil {
		log.Info("host summary", "cpu_pct", host.CPUPercent, "mem_pct", host.MemUsedPct)
	}

	if cfg.App.HTTP != "" {
		srv := api.New(d.Peers())
		log.Info("netsim: serving read-only stats API", "addr", cfg.App.HTTP)
		return http.ListenAndServe(cfg.App.HTTP, srv.Handler())
	}
	return nil
}
