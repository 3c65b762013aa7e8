package main

import (
	"fmt"
	"os"

	"github.com/example/queuebot/internal/cli"
	"github.com/example/queuebot/internal/wire"
)

func main() {
	err := cli.RootCmd().Execute()
	if cerr := wire.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
