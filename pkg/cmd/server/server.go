// Package server holds the command that serves the analysis api over http.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // profiling port is opt-in
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mpapenbr/tyre-strategy/log"
	"github.com/mpapenbr/tyre-strategy/pkg/api"
	"github.com/mpapenbr/tyre-strategy/pkg/cmd/cmdutil"
	"github.com/mpapenbr/tyre-strategy/pkg/config"
	"github.com/mpapenbr/tyre-strategy/pkg/service"
)

func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "starts the http api server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&config.ServerAddr,
		"addr",
		"a",
		"localhost:8080",
		"http server listen address")
	cmd.Flags().IntVar(&config.ProfilingPort,
		"profiling-port",
		0,
		"port to use for providing profiling data")
	cmd.Flags().StringVar(&config.TLSCertFile, "tls-cert", "",
		"certificate file (enables https)")
	cmd.Flags().StringVar(&config.TLSKeyFile, "tls-key", "",
		"key file for the certificate")
	cmd.Flags().StringVar(&config.TLSCAFile, "tls-ca", "",
		"ca file to verify client certificates")
	return cmd
}

//nolint:funlen // server lifecycle
func startServer(ctx context.Context) error {
	logger := log.GetFromContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if config.ProfilingPort > 0 {
		log.Info("Starting profiling server on port", log.Int("port", config.ProfilingPort))
		go func() {
			//nolint:gosec // no timeouts for localhost profiling
			err := http.ListenAndServe(
				fmt.Sprintf("localhost:%d", config.ProfilingPort),
				nil)
			if err != nil {
				log.Error("Profiling server stopped", log.ErrorField(err))
			}
		}()
	}

	var telemetry *config.Telemetry
	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		var err error
		if telemetry, err = config.SetupTelemetry(ctx); err != nil {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
	}
	if telemetry != nil {
		defer telemetry.Shutdown()
	}

	h, err := cmdutil.LoadHeuristics()
	if err != nil {
		return err
	}
	heuristics := &atomic.Pointer[config.Heuristics]{}
	heuristics.Store(h)
	watchHeuristics(heuristics)

	p, pool, err := cmdutil.NewProvider(ctx, telemetry != nil)
	if err != nil {
		log.Error("server could not be started", log.ErrorField(err))
		return err
	}
	apiOpts := []api.Option{api.WithLogger(logger.Named("api"))}
	if pool != nil {
		defer pool.Close()
		apiOpts = append(apiOpts, api.WithSessionService(service.NewSessionService(pool)))
	}
	analyzer := service.NewAnalyzer(p,
		service.WithHeuristicsSource(heuristics.Load),
		service.WithLogger(logger.Named("analyzer")))

	tlsConfig, err := newTLSConfig(ctx)
	if err != nil {
		return err
	}
	//nolint:gosec // analysis requests may run long
	server := &http.Server{
		Addr: config.ServerAddr,
		Handler: h2c.NewHandler(
			newCORS().Handler(api.NewHandler(analyzer, apiOpts...)),
			&http2.Server{}),
		TLSConfig: tlsConfig,
	}
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting http server",
			log.String("addr", config.ServerAddr),
			log.Bool("tls", tlsConfig != nil))
		var err error
		if tlsConfig != nil {
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()
	setupGoRoutinesDump()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case v := <-sigChan:
		log.Debug("Got signal ", log.Any("signal", v))
	case err := <-errChan:
		log.Error("server could not be started", log.ErrorField(err))
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown", log.ErrorField(err))
	}
	log.Info("Server terminated")
	return nil
}

// watchHeuristics replaces the heuristics when the config file changes.
// Invalid configurations are logged and the previous values are kept.
func watchHeuristics(target *atomic.Pointer[config.Heuristics]) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		h, err := cmdutil.LoadHeuristics()
		if err != nil {
			log.Warn("Keeping previous heuristics",
				log.String("file", e.Name),
				log.ErrorField(err))
			return
		}
		target.Store(h)
		log.Info("Heuristics reloaded", log.String("file", e.Name))
	})
	viper.WatchConfig()
}

func setupGoRoutinesDump() {
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGQUIT)
		buf := make([]byte, 1<<20)
		for {
			<-sigs
			stacklen := runtime.Stack(buf, true)
			fmt.Printf("=== received SIGQUIT ===\n*** goroutine dump...\n%s\n*** end\n",
				buf[:stacklen])
		}
	}()
}

func newCORS() *cors.Cors {
	// The api is read-mostly and unauthenticated, browsers from any origin may use it.
	return cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodDelete,
		},
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{
			"Accept",
			"Accept-Encoding",
			"Content-Encoding",
			api.RequestIDHeader,
		},
		// FF caps this value at 24h, Chrome at 2h.
		MaxAge: int(2 * time.Hour / time.Second),
	})
}
