package main

import (
	"os"

	"github.com/sandlbn/crate-checker/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
