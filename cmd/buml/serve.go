package main

import (
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/buml"
	"github.com/aretw0/buml/internal/presentation/tui"
	bumlmcp "github.com/aretw0/buml/pkg/adapters/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP tool server",
	Long: `Starts the B-UML MCP server.

Supported Transports:
- stdio (default): Standard Input/Output, for local process integration.
- sse: Server-Sent Events over HTTP on /sse and /message.
- http: Streamable HTTP on /mcp.

With --dist the in-process tools are replaced by *_with_url variants that
download and upload the model from a host, so replicas share no state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyServeFlags(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}

		rt, err := buildRuntime(cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		if cfg.Transport != bumlmcp.TransportStdio && term.IsTerminal(int(os.Stderr.Fd())) {
			tui.PrintBanner(os.Stderr, strings.TrimSpace(buml.Version))
		}

		opts := bumlmcp.ServeOptions{Port: cfg.Port}
		if cfg.Metrics {
			opts.Routes = map[string]http.Handler{
				"/metrics": promhttp.HandlerFor(rt.Registry, promhttp.HandlerOpts{}),
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := rt.Server.Serve(ctx, cfg.Transport, opts); err != nil && ctx.Err() == nil {
			return err
		}
		logger.Info("MCP server stopped gracefully")
		return nil
	},
}

func applyServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("dist") {
		cfg.Dist, _ = flags.GetBool("dist")
	}
	if flags.Changed("transport") {
		cfg.Transport, _ = flags.GetString("transport")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("store") {
		cfg.Store.Backend, _ = flags.GetString("store")
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Bool("dist", false, "Register *_with_url tools instead of in-process ones")
	serveCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio', 'sse' or 'http'")
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (sse and http)")
	serveCmd.Flags().String("store", "memory", "Active model store: memory, file or redis")
	serveCmd.Flags().String("output-dir", ".", "Default directory for generated files")
}
