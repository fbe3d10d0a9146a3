// Command gumcp serves SaaS provider APIs as MCP tools with a managed
// credential lifecycle.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gumcp/gumcp-go/internal/config"
	"github.com/gumcp/gumcp-go/internal/logs"
	"github.com/gumcp/gumcp-go/internal/server"
)

var (
	configFile    string
	dataDir       string
	listen        string
	connectorName string
	transport     string
	userID        string
	logLevel      string
	logToFile     bool
	logDir        string

	version = "v0.1.0" // Injected by -ldflags during build
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "gumcp",
		Short:   "MCP servers for SaaS provider APIs with managed OAuth credentials",
		Version: version,
		RunE:    runServe,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Data directory path (default: ~/.gumcp)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "User identity credentials are stored under (default: local)")

	registerServeFlags(rootCmd)

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newAuthCommand())
	rootCmd.AddCommand(newToolsCommand())
	rootCmd.AddCommand(newCallCommand())
	rootCmd.AddCommand(newActivityCommand())
	rootCmd.AddCommand(newSecretsCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func registerServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address for HTTP transport")
	cmd.Flags().StringVar(&connectorName, "connector", "", "Serve a single connector by name (default: all)")
	cmd.Flags().StringVarP(&transport, "transport", "t", "", "MCP transport: stdio or http")
	cmd.Flags().BoolVar(&logToFile, "log-to-file", false, "Also write logs to the OS log directory")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "Custom log directory (overrides the OS location)")
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (same as running gumcp with no subcommand)",
		RunE:  runServe,
	}
	registerServeFlags(cmd)
	return cmd
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfigWithFlags()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Logging == nil {
		cfg.Logging = logs.DefaultLogConfig()
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logToFile {
		cfg.Logging.EnableFile = true
	}
	if logDir != "" {
		cfg.Logging.LogDir = logDir
	}
	// stdio transport owns stdout/stderr for the protocol; keep the
	// console quiet unless explicitly asked otherwise
	if cfg.Transport == config.TransportStdio && logLevel == "" {
		cfg.Logging.Level = logs.LogLevelWarn
	}

	logger, err := logs.SetupLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	rt, err := newRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	mcpSrv, err := server.NewMCPServer(cfg, rt.registry, rt.dispatcher, rt.session, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting gumcp",
		zap.String("version", version),
		zap.String("data_dir", cfg.DataDir),
		zap.Strings("connectors", rt.registry.Names()))

	return server.New(cfg, mcpSrv, rt.registry, logger).Run(ctx)
}
