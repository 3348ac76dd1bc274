package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/config"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/logger"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/migrate"
)

const usage = "usage: migrate [-dir path] up|down|status|check"

func main() {
	dir := flag.String("dir", migrate.Dir, "goose migrations directory")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()
	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	if command == "check" {
		if err := migrate.Check(*dir); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("migrations ok")
		return
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logg := logger.New(logger.Options{ServiceName: "migrate", Level: logger.ParseLevel(cfg.App.LogLevel)})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "command": command, "dir": *dir})

	if err := run(ctx, cfg, logg, command, *dir); err != nil {
		logg.Error(ctx, "migrate failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, command, dir string) error {
	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer client.Close()
	sqlDB, err := client.DB().DB()
	if err != nil {
		return err
	}

	switch command {
	case "up":
		applied, err := migrate.Up(ctx, sqlDB, dir)
		for _, file := range applied {
			fmt.Println("applied", file)
		}
		return err
	case "down":
		file, err := migrate.Down(ctx, sqlDB, dir)
		if err == nil {
			fmt.Println("rolled back", file)
		}
		return err
	case "status":
		states, err := migrate.Status(ctx, sqlDB, dir)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tFILE\tAPPLIED AT")
		for _, s := range states {
			at := "pending"
			if s.Applied {
				at = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", s.Version, s.File, at)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown command %q; %s", command, usage)
	}
}
