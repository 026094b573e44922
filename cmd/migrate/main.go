// migrate runs database migrations from embedded SQL files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"teamboard/internal/config"
	"teamboard/internal/database"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg := config.Load()

	if err := database.Migrate(cfg.Database.URL, *direction); err != nil {
		if errors.Is(err, database.ErrNoChange) {
			// Already at target version; success.
			return
		}
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
