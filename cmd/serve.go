package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tara-vision/nexus/internal/logger"
	"github.com/tara-vision/nexus/internal/remote"
	"github.com/tara-vision/nexus/internal/safety"
	"github.com/tara-vision/nexus/internal/ui"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the peer endpoint that executes commands for run_remote",
	Long: `Serve accepts POST /execute {"command": "..."} and runs the command in
the local shell, answering {"output": "...", "returncode": N}. Commands are
NOT passed through the safety gate: only listen on addresses you trust.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shell := safety.NewShellRunner(viper.GetDuration("safety.timeout"))
		handler := remote.NewHandler(shell, "nexus")

		renderer := ui.NewRenderer(os.Stdout, nil)
		fmt.Println(renderer.InfoMessage(fmt.Sprintf("Nexus peer listening on http://%s (Ctrl+C to stop)", listenAddr)))
		logger.Info("peer server starting", "addr", listenAddr)

		if err := remote.Serve(ctx, listenAddr, handler); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		logger.Info("peer server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:8080", "address to listen on")
	rootCmd.AddCommand(serveCmd)
}
