// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package cli implements the divtest command line.
//
package cli

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at link time by release builds.
var Version string

var rootCmd = &cobra.Command{
	Use:   "divtest [flags] [trace.vcd]",
	Short: "Randomized conformance tester for a divider by a constant.",
	Long: `Feed random values to a radix lookup table divider and check its results
until interrupted or until it returns a wrong result.
If a trace file is given, a VCD waveform of the run is written to it.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "version") {
			printVersion(cmd)
			return
		}
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		cfg := config{
			divisor:    getUint64(cmd, "divisor"),
			width:      getInt(cmd, "width"),
			radix:      getInt(cmd, "radix"),
			maxCycles:  getUint64(cmd, "max-cycles"),
			clearEvery: getUint64(cmd, "clear-every"),
			count:      getUint64(cmd, "count"),
			seed:       getInt64(cmd, "seed"),
			progress:   getDuration(cmd, "progress"),
			strict:     getFlag(cmd, "strict"),
		}
		var trace string
		if len(args) > 0 {
			trace = args[0]
		}
		code, err := run(cfg, trace, cmd.OutOrStdout())
		if err != nil {
			log.Error(err)
		}
		if code != 0 {
			os.Exit(code)
		}
	},
}

func printVersion(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprint(out, "divtest ")
	if Version != "" {
		fmt.Fprint(out, Version)
	} else if info, ok := debug.ReadBuildInfo(); ok {
		fmt.Fprint(out, info.Main.Version)
	} else {
		fmt.Fprint(out, "(unknown version)")
	}
	fmt.Fprintln(out)
}

// Execute runs the command line. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.Flags().Uint64("divisor", 3, "constant divisor")
	rootCmd.Flags().Int("width", 48, "input value width in bits (1 to 64)")
	rootCmd.Flags().Int("radix", 4, "number of bits processed per cycle by the divider")
	rootCmd.Flags().Uint64("max-cycles", 0, "fail if a result takes more than this many cycles (0 = no limit)")
	rootCmd.Flags().Uint64("clear-every", 0, "truncate the trace every N verified tests (0 = never)")
	rootCmd.Flags().Uint64("count", 0, "stop after N verified tests (0 = run until interrupted)")
	rootCmd.Flags().Int64("seed", 0, "stimulus seed (0 = seed from the current time)")
	rootCmd.Flags().Duration("progress", time.Second, "progress report interval (0 disables)")
	rootCmd.Flags().Bool("strict", false, "exit with status 1 when a test fails")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.AddCommand(genCmd)
}
