package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tidgate/internal/remoteapi"
)

var serveAddr string

// serveCmd runs the remote verification endpoint over server-rendered markup.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the remote verification endpoint",
	Long: `Starts the HTTP service implementing GET ` + remoteapi.VerifyPath + `.
For each request, the route's server-rendered HTML is fetched from app_url
and verified statically, giving the gate its corroboration signal.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8931", "Listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := buildStack(logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           remoteapi.NewServer(s.cfg.AppURL, s.verifier, logger.Named("remoteapi")).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("remote verification service listening",
		zap.String("addr", serveAddr),
		zap.String("upstream", s.cfg.AppURL))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-cmd.Context().Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
