package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/weiwei-tsao/tgchecker/internal/platform/config"
	"github.com/weiwei-tsao/tgchecker/pkg/model"
	"github.com/weiwei-tsao/tgchecker/pkg/tgchecker"
	"github.com/weiwei-tsao/tgchecker/pkg/util"
)

func main() {
	apiKey := flag.String("key", "", "API key (defaults to TGCHECKER_API_KEY)")
	baseURL := flag.String("base-url", "", "Checker endpoint (defaults to TGCHECKER_BASE_URL or the public service)")
	async := flag.Bool("async", false, "Run the request through the non-blocking client path")
	asJSON := flag.Bool("json", false, "Print the raw check result as JSON")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: tgcheck [flags] NUMBER [NUMBER...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load(".env.local", ".env")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if *apiKey != "" {
		cfg.CheckerAPIKey = *apiKey
	}
	if *baseURL != "" {
		cfg.CheckerBaseURL = *baseURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := tgchecker.New(nil, tgchecker.Config{
		APIKey:  cfg.CheckerAPIKey,
		BaseURL: cfg.CheckerBaseURL,
		Timeout: cfg.CheckerTimeout,
	})

	result, err := run(ctx, checker, flag.Args(), *async)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error (%s): %v\n", tgchecker.Kind(err), err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatalf("encode result: %v", err)
		}
		return
	}

	batch, _ := tgchecker.BuildBatch(flag.Args())
	for _, n := range batch {
		status, ok := result.Lookup(n)
		if !ok {
			status = "-"
		}
		region := util.RegionOf(n)
		if region == "" {
			region = "??"
		}
		fmt.Printf("%-18s %-10s %s\n", n, status, region)
	}
	fmt.Printf("status=%s errors=%s time=%.2fs\n", result.Status, errorsText(result.Errors), result.TimeTaken)
}

func run(ctx context.Context, checker *tgchecker.Client, numbers []string, async bool) (model.CheckResult, error) {
	if !async {
		return checker.Check(ctx, numbers)
	}
	outcome := <-checker.CheckAsync(ctx, numbers)
	return outcome.Result, outcome.Err
}

func errorsText(e model.Errors) string {
	if !e.Present() {
		return "-"
	}
	return e.String()
}
