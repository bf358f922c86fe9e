package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/memory"
	"fintrack/internal/seed"
)

func main() {
	cli.LoadEnvFile()

	users := flag.Int("users", seed.DefaultUsers, "number of accounts to create or reuse")
	count := flag.Int("transactions", seed.DefaultTransactions, "number of transactions to insert")
	password := flag.String("password", seed.DefaultPassword, "password for seeded accounts")
	flag.Parse()

	logger := cli.SetupLogger(config.Load(), log.ComponentSeed)
	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.DataBackend == "memory" {
		logger.Warn("Seeding the memory backend only lasts for this process")
	}

	ctx := context.Background()
	res := cli.InitBackend(ctx, logger, cfg)
	if res.Cleanup != nil {
		defer func() {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}()
	}

	bar := progressbar.NewOptions(*count,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Seeding transactions...[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	now := time.Now()
	gen := seed.NewGenerator(rand.NewPCG(uint64(now.UnixNano()), uint64(os.Getpid())), memory.Categories(cfg.CategoriesFile), now)
	out, err := seed.Run(ctx, res.Backend.Identity, res.Backend.Store, gen, seed.Options{
		Users:        *users,
		Transactions: *count,
		Password:     *password,
		Progress: func() {
			if err := bar.Add(1); err != nil {
				logger.Debug("Progress bar update failed", log.FieldError, err)
			}
		},
	}, logger)
	if err != nil {
		logger.Error("Seeding failed", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Seeding completed",
		"backend", cfg.DataBackend,
		"users", len(out.Users),
		"transactions", out.Transactions,
		"failed", out.Failed)
}
