// Package main starts the capture proxy and its admin REST service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go_capture_proxy/utils"

	"github.com/go-chassis/go-chassis/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := utils.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	go func() { // catch signal and invoke graceful termination
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		sig := <-stop
		logger.Warnf("caught signal %v", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		logger.Errorf("capture proxy stopped: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := utils.GetLogger()

	app, err := InitializeApp()
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}

	chassis.RegisterSchema("rest", app.Controller)
	if err := chassis.Init(); err != nil {
		return fmt.Errorf("init chassis: %w", err)
	}

	addr := app.Config.ServerConfig.ProxyAddr
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Proxy,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() error {
		logger.Infof("proxy listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("proxy server: %w", err)
		}
		return nil
	})
	ewg.Go(func() error {
		// chassis handles its own signals and returns once its servers stop
		if err := chassis.Run(); err != nil {
			return fmt.Errorf("admin server: %w", err)
		}
		return nil
	})
	ewg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown proxy server: %w", err)
		}
		return nil
	})

	return ewg.Wait()
}
