package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"ustazhub.kz/internal/migrate"
	"ustazhub.kz/internal/store/pg"
)

func main() {
	var (
		dsn           = flag.String("dsn", os.Getenv("USTAZHUB_PG_DSN"), "postgres dsn (defaults to USTAZHUB_PG_DSN)")
		migrationsDir = flag.String("migrations", "migrations", "directory with .up.sql/.down.sql files")
		seedsDir      = flag.String("seeds", "seeds", "directory with seed .sql files")
	)
	flag.Parse()

	if *dsn == "" {
		fatal("missing dsn: pass -dsn or set USTAZHUB_PG_DSN")
	}
	command := flag.Arg(0)
	if command == "" {
		fatal("usage: migrate [flags] up|down|seed|status")
	}

	store, err := pg.Open(*dsn)
	if err != nil {
		fatal("open database: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	mgr := migrate.NewManager(store.DB(), *migrationsDir, *seedsDir)

	switch command {
	case "up":
		err = mgr.Up(ctx)
	case "down":
		err = mgr.Down(ctx)
	case "seed":
		err = mgr.Seed(ctx)
	case "status":
		var applied []string
		applied, err = mgr.Status(ctx)
		if err == nil {
			if len(applied) == 0 {
				fmt.Println("no migrations applied")
			}
			for _, name := range applied {
				fmt.Println(name)
			}
		}
	default:
		fatal("unknown command %q: want up, down, seed or status", command)
	}
	if err != nil {
		fatal("%s: %v", command, err)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
