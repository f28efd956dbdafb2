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
	"strings"

	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"github.com/aka2910/netsim/report"
)

var consoleStoreFlag = cli.StringFlag{Name: "store", Usage: "path to a LevelDB artifact store written by a previous run"}

var consoleCommand = cli.Command{
	Name:   "console",
	Usage:  "open an interactive prompt to inspect a finished run's artifacts",
	Flags:  []cli.Flag{consoleStoreFlag},
	Action: consoleAction,
}

// consoleAction opens a small REPL over a report.Store: "peer <id>" prints
// that peer's dot graph, "summary" prints the overall table, "quit" exits.
// It never re-runs the simulation — it's strictly a post-hoc viewer over
// whatever a prior "netsim --artifacts.store=<path>" run wrote.
func consoleAction(ctx *cli.Context) error {
	path := ctx.String(consoleStoreFlag.Name)
	if path == "" {
		return fmt.Errorf("console: --store is required")
	}
	store, err := report.OpenStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("netsim console — commands: peer <id>, summary, quit")
	for {
		input, err := line.Prompt("netsim> ")
		if err != nil {
			return nil
		}
		line.AppendHistory(input)
		fields := strings.Fields(input)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit":
			return nil
		case "summary":
			printKey(store, "summary")
		case "peer":
			if len(fields) != 2 {
				fmt.Println("usage: peer <id>")
				continue
			}
			printKey(store, "peer-"+fields[1])
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func printKey(store *report.Store, key string) {
	v, err := store.Get(key)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(string(v))
}
