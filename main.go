// lanerun - priority task scheduling toolkit for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/jeranaias/lanerun/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	if err := cli.Bootstrap(args); err != nil {
		cli.HandleErrorAndExit(err, args.JSON)
	}

	var err error
	switch cmd {
	case cli.CmdRepl:
		err = cli.HandleRepl(args)
	case cli.CmdDemo:
		err = cli.HandleDemo(args)
	case cli.CmdBench:
		err = cli.HandleBench(args)
	case cli.CmdWatch:
		err = cli.HandleWatch(args)
	case cli.CmdHistory:
		err = cli.HandleHistory(args)
	case cli.CmdExport:
		err = cli.HandleExport(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		err = cli.HandleVersionWithJSON(args)
	case cli.CmdHelp:
		err = cli.HandleHelp(args)
	case cli.CmdUnknown:
		err = cli.HandleUnknown(args)
	}

	if err != nil {
		cli.DisplayError(err, args.JSON)
		os.Exit(cli.GetExitCode(err))
	}
}
