package cli

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/astlens/internal/server"
	"github.com/matzehuels/astlens/pkg/tree"
)

// serveOptions holds the serve command's flags.
type serveOptions struct {
	addr        string
	sessionTTL  time.Duration
	maxSessions int
	flags       optionFlags
	cache       cacheFlags
}

// serveCommand creates the serve command for the browser viewer.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve [analysis.json]",
		Short: "Serve the interactive viewer over HTTP",
		Long: `Serve starts the browser viewer. Every tab gets its own session with
drag-to-pan, wheel zoom and export of the current view.

When an analysis file is given, the page opens it on load; otherwise use
the page's "Open analysis" button.`,
		Example: `  astlens serve
  astlens serve analysis.json --addr :9000
  astlens serve analysis.json --redis localhost:6379`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "address to listen on")
	cmd.Flags().DurationVar(&opts.sessionTTL, "session-ttl", server.DefaultSessionTTL, "drop sessions idle for this long")
	cmd.Flags().IntVar(&opts.maxSessions, "max-sessions", server.DefaultMaxSessions, "maximum concurrent sessions")
	opts.flags.register(cmd)
	opts.cache.register(cmd)

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, args []string, opts serveOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	pipeOpts, err := opts.flags.options(cmd)
	if err != nil {
		return err
	}

	var preload *tree.Analysis
	if len(args) == 1 {
		a, err := tree.ReadAnalysisFile(args[0])
		if err != nil {
			return err
		}
		preload = &a
		logger.Debug("preloading analysis", "file", args[0])
	}

	cc, err := c.newCache(ctx, opts.cache)
	if err != nil {
		return err
	}
	defer cc.Close()

	srv, err := server.New(server.Config{
		Options:     pipeOpts,
		Cache:       cc,
		Logger:      c.Logger,
		SessionTTL:  opts.sessionTTL,
		MaxSessions: opts.maxSessions,
		Preload:     preload,
	})
	if err != nil {
		return err
	}

	printSuccess("Viewer at %s", StyleLink.Render(serveURL(opts.addr)))
	printDetail("press ctrl+c to stop")

	err = srv.ListenAndServe(ctx, opts.addr)
	if err == context.Canceled {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// serveURL turns a listen address into a URL a browser can open.
func serveURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return "http://" + host + ":" + port
}
