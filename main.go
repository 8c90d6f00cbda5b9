package main

import (
	"os"

	"svyasa/service"
)

func main() {
	if err := service.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
