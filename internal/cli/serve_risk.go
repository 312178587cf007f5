package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/ztbench/internal/riskd"
)

var (
	serveHTTPAddr string
	serveGRPCAddr string
)

func init() {
	rootCmd.AddCommand(serveRiskCmd)
	serveRiskCmd.Flags().StringVar(&serveHTTPAddr, "http-addr", "127.0.0.1:5000", "HTTP listen address (empty to disable)")
	serveRiskCmd.Flags().StringVar(&serveGRPCAddr, "grpc-addr", "127.0.0.1:5001", "gRPC listen address (empty to disable)")
}

var serveRiskCmd = &cobra.Command{
	Use:   "serve-risk",
	Short: "Start the stand-in risk scoring service",
	Long:  "Serves a deterministic logistic risk model over HTTP (POST " + riskd.ScorePath + ", /healthz, /metrics)\nand gRPC, so simulations can exercise the remote scoring path.",
	Args:  cobra.NoArgs,
	RunE:  runServeRisk,
}

func runServeRisk(cmd *cobra.Command, args []string) error {
	if serveHTTPAddr == "" && serveGRPCAddr == "" {
		return fmt.Errorf("nothing to serve: both --http-addr and --grpc-addr are empty")
	}

	srv := riskd.New(riskd.WithLogger(logger))

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	if serveHTTPAddr != "" {
		lis, err := net.Listen("tcp", serveHTTPAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", serveHTTPAddr, err)
		}
		fmt.Fprintf(os.Stderr, "risk scorer HTTP listening on %s\n", lis.Addr())
		g.Go(func() error { return srv.ServeHTTPOn(lis) })
	}
	if serveGRPCAddr != "" {
		lis, err := net.Listen("tcp", serveGRPCAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", serveGRPCAddr, err)
		}
		fmt.Fprintf(os.Stderr, "risk scorer gRPC listening on %s\n", lis.Addr())
		g.Go(func() error { return srv.ServeGRPC(lis) })
	}

	g.Go(func() error {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down risk scorer...")
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
