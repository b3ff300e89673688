package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/appetiteclub/tableside/cmd/utils/internal/commands"
	"github.com/aquamarinepk/aqm"
)

const (
	appName    = "tableside-utils"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Shares the service namespace so database and token settings match.
	config, err := aqm.LoadConfig("TABLESIDE", os.Args[2:])
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logLevel, _ := config.GetString("log.level")
	if logLevel == "" {
		logLevel = "info"
	}
	logger := aqm.NewLogger(logLevel)

	ctx := context.Background()
	command := os.Args[1]

	switch command {
	case "seed-demo":
		if err := commands.SeedDemo(ctx, config, logger); err != nil {
			log.Fatalf("Demo seeding failed: %v", err)
		}
		logger.Info("Demo seeding completed successfully")

	case "mint-token":
		token, err := commands.MintToken(ctx, config, logger)
		if err != nil {
			log.Fatalf("Cannot mint token: %v", err)
		}
		fmt.Println(token)

	case "reset-db":
		if err := commands.ResetDB(ctx, config, logger); err != nil {
			log.Fatalf("Database reset failed: %v", err)
		}
		logger.Info("Database reset completed successfully")

	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - Tableside utility commands

Usage:
  %s <command> [options]

Commands:
  seed-demo    Apply the demo catalog (branches, tables, categories, menu items)
  mint-token   Print a signed staff or owner bearer token
  reset-db     Drop the tableside database (USE WITH CAUTION)
  version      Print version information
  help         Show this help message

Environment Variables:
  TABLESIDE_DB_MONGO_URL     MongoDB connection URL (default: mongodb://localhost:27017)
  TABLESIDE_DB_MONGO_NAME    Database name (default: tableside)
  TABLESIDE_AUTH_JWT_SECRET  Signing secret shared with the service
  TABLESIDE_TOKEN_ROLE       mint-token role: owner or staff (default: staff)
  TABLESIDE_TOKEN_USER       mint-token subject
  TABLESIDE_TOKEN_BRANCH     mint-token branch id, or a branch slug from the demo catalog
  TABLESIDE_TOKEN_TTL        mint-token lifetime, e.g. 12h (default: 12h)

Examples:
  %s seed-demo
  TABLESIDE_TOKEN_ROLE=owner TABLESIDE_TOKEN_USER=alice %s mint-token
  TABLESIDE_DB_MONGO_URL=mongodb://localhost:27017 %s reset-db

`, appName, appName, appName, appName, appName)
}
