package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"zenrin-geocode/internal/app"

	"github.com/joho/godotenv"
)

// main loads the optional .env file, then hands execution to the app runner.
func main() {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	runner := app.NewAppRunner()
	if err := runner.Run(os.Args[1:]); err != nil {
		log.Printf("[ERROR] %v", err)
		if errors.Is(err, app.ErrUsage) || errors.Is(err, app.ErrMissingArgs) {
			fmt.Fprintln(os.Stderr, "")
			runner.Usage(os.Stderr)
		}
		os.Exit(1)
	}
}
