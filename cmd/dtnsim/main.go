// Command dtnsim simulates routing in opportunistic networks driven by
// contact traces.
package main

import (
	"github.com/sarchlab/dtnsim/cmd/dtnsim/cmd"
	"github.com/tebeka/atexit"
)

func main() {
	atexit.Exit(cmd.Execute())
}
