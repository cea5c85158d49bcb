// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command divtest runs a randomized conformance test of a divider by a
// constant. See divtest -h for usage.
//
package main

import "github.com/db47h/hwdiv/internal/cli"

func main() {
	cli.Execute()
}
