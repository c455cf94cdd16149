package main

import (
	"fmt"
	"os"

	"github.com/lixenwraith/spotlight/core"
)

func main() {
	// Panic Recovery: restore the terminal before the stack trace prints
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	if err := NewRootCommand().Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "spotlight: %v\n", err)
		os.Exit(1)
	}
}
