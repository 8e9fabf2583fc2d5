package main

import (
	"os"

	"blogsite/service"
)

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches the command line to the service package.
func RealMain() {
	exit(service.HandleCommand(os.Args[1:]))
}
