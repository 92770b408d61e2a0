package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-stock-sentiment/internal/analyzer/config"
	"golang-stock-sentiment/internal/analyzer/dto"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/telegram"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	jsonOutput bool
	noCache    bool
	notify     bool
)

var rootCmd = &cobra.Command{
	Use:   "sentiment <ticker>",
	Short: "Scores crowd sentiment for a stock ticker",
	Long: `Fetches recent posts mentioning a ticker from X/Twitter and Farcaster, scores each post
and prints the mean score in [0,1]. 0.5 is neutral. Results are cached per ticker.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSentiment,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to config file")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full result as JSON")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "ignore the cached score and recompute")
	rootCmd.Flags().BoolVar(&notify, "notify", false, "send the result to the configured Telegram chat")
}

func runSentiment(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Debug("Starting sentiment run", zap.String("name", cfg.App.Name), zap.String("version", cfg.App.Version))

	app, err := newApp(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.service.Analyze(ctx, args[0], dto.AnalyzeOptions{SkipCache: noCache})
	if err != nil {
		return err
	}

	if err := printResult(cmd, result); err != nil {
		return err
	}

	if notify {
		notifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram notifier: %w", err)
		}
		if err := notifier.SendMessage(telegram.FormatSentimentResult(result)); err != nil {
			appLogger.Warn("Failed to send telegram notification", logger.ErrorField(err))
		}
	}
	return nil
}

func printResult(cmd *cobra.Command, result *dto.AnalysisResult) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err := fmt.Fprintf(out, "%.4f\n", result.Score)
	return err
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "sentiment: %v\n", err)
		os.Exit(1)
	}
}
