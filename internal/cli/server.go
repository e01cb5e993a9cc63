package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KooshaPari/vibeproxy/internal/config"
	"github.com/KooshaPari/vibeproxy/internal/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Control the proxy backend server",
	Long:  `Start, stop, and inspect the proxy backend server.`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the backend server",
	RunE:  runServerStart,
}

var serverStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the backend server",
	RunE:  runServerStop,
}

var serverStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the backend server and report its health",
	RunE:  runServerStatus,
}

func init() {
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverStatusCmd)
	serverCmd.AddCommand(serverStopCmd)
}

func newManager() (*server.Manager, error) {
	store, err := config.NewStore()
	if err != nil {
		return nil, err
	}
	return server.NewManager(store), nil
}

func runServerStart(cmd *cobra.Command, args []string) error {
	mgr, err := newManager()
	if err != nil {
		return err
	}

	if err := mgr.Start(cmd.Context()); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	fmt.Println(styleRunning.Render("Server started."))

	return nil
}

func runServerStop(cmd *cobra.Command, args []string) error {
	mgr, err := newManager()
	if err != nil {
		return err
	}

	if err := mgr.Stop(cmd.Context()); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	fmt.Println(styleStopped.Render("Server stopped."))

	return nil
}

func runServerStatus(cmd *cobra.Command, args []string) error {
	mgr, err := newManager()
	if err != nil {
		return err
	}

	status, err := mgr.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to query server status: %w", err)
	}

	if status.Running {
		fmt.Println(styleRunning.Render("Server is running."))
		fmt.Printf("  %s %s\n", styleLabel.Render("Latency:"), styleValue.Render(fmt.Sprintf("%dms", status.LatencyMS)))
	} else {
		fmt.Println(styleStopped.Render("Server is not running."))
	}

	if status.Message != "" {
		fmt.Printf("  %s %s\n", styleLabel.Render("Message:"), styleValue.Render(status.Message))
	}

	return nil
}
