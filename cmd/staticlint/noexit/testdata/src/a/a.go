package main

import (
	"log"
	"os"
)

func run() error {
	os.Exit(2) // allowed outside main
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %v", err) // want "log.Fatalf call in main is forbidden, return an error instead"
	}
	os.Exit(0) // want "os.Exit call in main is forbidden, return an error instead"
}
