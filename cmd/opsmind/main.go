package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/opsmindai/opsmind/internal/artifacts"
	"github.com/opsmindai/opsmind/internal/config"
	"github.com/opsmindai/opsmind/internal/githubfix"
	"github.com/opsmindai/opsmind/internal/handlers"
	"github.com/opsmindai/opsmind/internal/logger"
	"github.com/opsmindai/opsmind/internal/pipeline"
	"github.com/opsmindai/opsmind/internal/slackshare"
	"github.com/opsmindai/opsmind/internal/store"
)

const usage = `Usage: opsmind <command> [arguments]

Commands:
  serve                 start the HTTP server
  run [logfile]         classify a log (stdin when no file) and run the pipeline
  replay <incident_id>  regenerate retrospective artifacts for an incident
  report <incident_id>  print the retrospective document as JSON
`

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	log := logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	runner := buildRunner(cfg, log)

	switch os.Args[1] {
	case "serve":
		serve(cfg, runner, log)
	case "run":
		logContent, err := readLogContent(os.Args[2:])
		if err != nil {
			fmt.Fprintf(os.Stderr, "opsmind run: %v\n", err)
			os.Exit(2)
		}
		result, err := runner.Run(context.Background(), logContent)
		if err != nil {
			fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
			return
		}
		printJSON(result)
	case "replay":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "opsmind replay: incident ID is required")
			os.Exit(2)
		}
		result, err := runner.Replay(context.Background(), os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "replay failed: %v\n", err)
			return
		}
		printJSON(result)
	case "report":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "opsmind report: incident ID is required")
			os.Exit(2)
		}
		doc, err := runner.Document(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "report failed: %v\n", err)
			return
		}
		printJSON(doc)
	default:
		fmt.Fprintf(os.Stderr, "opsmind: unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
}

// buildRunner wires the pipeline with whichever integrations are
// configured. Missing tokens disable the integration instead of
// failing startup.
func buildRunner(cfg *config.Config, log *logrus.Logger) *pipeline.Runner {
	opts := pipeline.Options{
		Store:    store.New(cfg.DataFile),
		Resolver: artifacts.NewResolver(cfg.OutputDir),
		Config:   *cfg,
		Log:      log,
	}

	if cfg.GitHubToken != "" {
		gh, err := githubfix.New(githubfix.Options{
			Token:      cfg.GitHubToken,
			MaxRetries: cfg.MaxRetries,
			Budget:     time.Duration(cfg.PRBudgetMinutes) * time.Minute,
			HTTPClient: &http.Client{Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second},
			Log:        log,
		})
		if err != nil {
			log.Warnf("GitHub integration disabled: %v", err)
		} else {
			opts.GitHub = gh
			log.Info("GitHub integration enabled")
		}
	}

	if cfg.SlackBotToken != "" {
		uploader, err := slackshare.New(cfg.SlackBotToken, log)
		if err != nil {
			log.Warnf("Slack integration disabled: %v", err)
		} else {
			opts.Slack = uploader
			log.Info("Slack integration enabled")
		}
	}

	return pipeline.New(opts)
}

func serve(cfg *config.Config, runner *pipeline.Runner, log *logrus.Logger) {
	server := handlers.New(runner, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      server.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("opsmind listening on :%d", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
	server.Wait()
}

// readLogContent reads the log to classify from a file argument or
// from stdin.
func readLogContent(args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no log content provided")
	}
	return string(data), nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
