// costgate - cost-aware task routing with a sandboxed local tier.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	"github.com/jeranaias/costgate/internal/cli"
	"github.com/jeranaias/costgate/internal/errs"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	case cli.CmdVersion:
		cli.HandleVersion()
		return
	}

	configPath := cli.NewArgParser(args).Flag("config")
	app, err := cli.NewApp(configPath)
	if err != nil {
		// Zero providers or invalid config is the one fatal condition.
		fmt.Fprintf(os.Stderr, "costgate: %v\n", err)
		if errs.IsConfiguration(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
	defer app.Close()

	switch cmd {
	case cli.CmdRoute:
		err = cli.HandleRoute(app, args)
	case cli.CmdExec:
		err = cli.HandleExec(app, args)
	case cli.CmdStats:
		err = cli.HandleStats(app, args)
	case cli.CmdShell:
		err = cli.HandleShell(app, configPath)
	case cli.CmdDoctor:
		err = cli.HandleDoctor(app)
	case cli.CmdVerify:
		err = cli.HandleVerify(app)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "costgate: %v\n", err)
		os.Exit(1)
	}
}
