// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/db47h/hwdiv/hwlib"
	"github.com/db47h/hwdiv/sv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var genCmd = &cobra.Command{
	Use:   "gen <ModuleName> <Divisor> <InputBitWidth> <RadixBitWidth>",
	Short: "Print the SystemVerilog source of a divider.",
	Long: `Print the SystemVerilog source of a radix lookup table divider by a constant.
The divider processes RadixBitWidth bits of its input per clock cycle.`,
	Args: cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		p, err := parseGenArgs(args[1:])
		if err == nil {
			err = p.Validate()
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(exitConfig)
		}
		if err = sv.WriteDivider(cmd.OutOrStdout(), args[0], p); err != nil {
			log.Error(err)
			os.Exit(exitFail)
		}
	},
}

// parseGenArgs parses the divisor, input width and radix width arguments.
func parseGenArgs(args []string) (hwlib.DividerParams, error) {
	var p hwlib.DividerParams
	if len(args) != 3 {
		return p, errors.Errorf("expected 3 numeric arguments, got %d", len(args))
	}
	d, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return p, errors.Wrap(err, "invalid divisor")
	}
	w, err := strconv.Atoi(args[1])
	if err != nil {
		return p, errors.Wrap(err, "invalid input width")
	}
	r, err := strconv.Atoi(args[2])
	if err != nil {
		return p, errors.Wrap(err, "invalid radix width")
	}
	p.Divisor, p.InputWidth, p.RadixWidth = d, w, r
	return p, nil
}
