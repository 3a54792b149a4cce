// Copyright 2022 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// spashell hosts a single page application: the SPA shell on "/" and on every
// otherwise unmatched path, the static assets below "/assets/", and a
// placeholder "/api/auth" endpoint.
//
// Build the frontend first:
//
//	cd ./frontend/ && npm install && npm run build
//	go run ./cmd/spashell
//
// Set SPASHELL_LOG to control log verbosity, such as "spashell=info,http=trace".
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/thediveo/spashell"
	"github.com/thediveo/spashell/frontend"
	"github.com/thediveo/spashell/internal/config"
	"github.com/thediveo/spashell/internal/logging"
)

// shutdownTimeout limits how long in-flight requests may take to complete
// after a termination signal.
const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout, nil); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "spashell: %v\n", err)
		os.Exit(1)
	}
}

// run serves the SPA until ctx gets cancelled, logging to out. If not nil,
// ready gets called with the bound listening address as soon as the server
// accepts connections.
func run(ctx context.Context, cfg *config.Config, out io.Writer, ready func(net.Addr)) error {
	filter, err := logging.ParseFilter(cfg.LogFilter)
	loggers := logging.New(out, filter)
	log := loggers.For("spashell")
	if err != nil {
		log.Error(err, "ignoring invalid log directives", "filter", cfg.LogFilter)
	}

	checkAssets(log, cfg.AssetsDir)

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Error(err, "cannot bind listening socket", "addr", cfg.ListenAddr)
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddr, err)
	}
	log.V(1).Info(fmt.Sprintf("http server started on http://%s", ln.Addr()))

	server := &http.Server{
		Handler: newHandler(cfg, loggers.For("http")),
	}
	served := make(chan error, 1)
	go func() {
		served <- server.Serve(ln)
	}()
	if ready != nil {
		ready(ln.Addr())
	}

	select {
	case err := <-served:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	log.V(1).Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	if err := <-served; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// newHandler returns the traced router serving the embedded SPA shell and the
// assets from the configured directory.
func newHandler(cfg *config.Config, log logr.Logger) http.Handler {
	router := spashell.NewRouter(
		spashell.NewIndexHandler(frontend.Index),
		spashell.NewAssetServer(os.DirFS(cfg.AssetsDir)))
	return spashell.Trace(log)(router)
}

// checkAssets warns about a missing asset directory or about assets the SPA
// shell references but which are missing. Neither is fatal, as the frontend
// might still be building.
func checkAssets(log logr.Logger, dir string) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logging.Warn(log, "static asset directory not found, asset requests will fail",
			"dir", dir)
		return
	}
	missing, err := spashell.CheckIndexAssets(frontend.Index, os.DirFS(dir))
	if err != nil {
		log.Error(err, "cannot check SPA shell asset references")
		return
	}
	for _, asset := range missing {
		logging.Warn(log, "SPA shell references missing asset", "asset", asset, "dir", dir)
	}
}
