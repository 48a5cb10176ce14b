package main

import (
	"log/slog"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"room-reservation/cmd"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}
	cmd.Execute()
}
