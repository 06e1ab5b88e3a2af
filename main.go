package main

import (
	"os"

	"github.com/jkroepke/pam-auth-github/cmd"
)

func main() {
	os.Exit(cmd.Execute(os.Args, os.Stdin, os.Stdout, os.Stderr))
}
