package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"courier/internal/client"
	"courier/internal/config"
	"courier/internal/engine"
	"courier/internal/server"
	"courier/internal/storage"
	"courier/internal/ui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg := config.DefaultSettings()

	rootCmd := &cobra.Command{
		Use:   "courier",
		Short: "Courier receives short LAN text messages over TCP and stores them",
		RunE: func(cmd *cobra.Command, args []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			return ui.Run(cfg, noColor)
		},
	}

	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfg.Server.BindHost, "bind", cfg.Server.BindHost, "Address to bind the listener to")
	rootCmd.PersistentFlags().IntVar(&cfg.Server.Port, "port", cfg.Server.Port, "Port to listen on (0 picks a free port)")
	rootCmd.PersistentFlags().StringVar(&cfg.Database.Host, "db-host", cfg.Database.Host, "Postgres host")
	rootCmd.PersistentFlags().IntVar(&cfg.Database.Port, "db-port", cfg.Database.Port, "Postgres port")
	rootCmd.PersistentFlags().StringVar(&cfg.Database.Name, "db-name", cfg.Database.Name, "Database name")
	rootCmd.PersistentFlags().StringVar(&cfg.Database.User, "db-user", cfg.Database.User, "Database user")
	rootCmd.PersistentFlags().StringVar(&cfg.Database.Password, "db-password", cfg.Database.Password, "Database password")
	rootCmd.Flags().Bool("no-color", false, "Disable color output")

	rootCmd.AddCommand(newServeCmd(&cfg), newSendCmd(&cfg))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newServeCmd runs the receiver headless: same engine and server as the
// TUI, with activity going to a structured log instead of a screen.
func newServeCmd(cfg *config.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the receiver without the terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			gateway := storage.New(cfg.Database)
			eng := engine.New(*cfg, gateway, logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			srv := server.New(*cfg, eng.DataSink(), eng.StatusSink(), eng.ErrorSink())
			eng.AttachServer(srv.Start, srv.Stop, srv.Info)

			go func() { _ = eng.Run(ctx) }()

			if err := srv.Start(); err != nil {
				return err
			}
			if err := gateway.Connect(ctx); err != nil {
				// Storage is optional at startup; messages arrive as
				// NOT_SAVED until a connection succeeds.
				logger.Warn("storage connect failed", zap.Error(err))
			}

			info := srv.Info()
			logger.Info("receiver running", zap.String("addr", info.Addr()))

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop

			logger.Info("shutting down")
			srv.Stop()
			cancel()
			return gateway.Disconnect()
		},
	}
}

func newSendCmd(cfg *config.Settings) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send one message line to a running receiver",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			ack, err := client.Send(addr, message, cfg.Client.Timeout)
			if err != nil {
				return err
			}
			if ack == "" {
				fmt.Println("sent (no acknowledgment)")
				return nil
			}
			fmt.Println(ack)
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3005", "Receiver address (host:port)")
	cmd.Flags().DurationVar(&cfg.Client.Timeout, "timeout", cfg.Client.Timeout, "Connect and read timeout")
	return cmd
}
