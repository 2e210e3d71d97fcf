package main

import (
	"os"

	"github.com/Henok-Aragaw/echo/echoservice"
)

func main() {
	if err := echoservice.Run(); err != nil {
		os.Exit(1)
	}
}
