package cmd

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wethinkt/go-folio/internal/config"
	"github.com/wethinkt/go-folio/internal/document"
	"github.com/wethinkt/go-folio/internal/events"
	"github.com/wethinkt/go-folio/internal/i18n"
	"github.com/wethinkt/go-folio/internal/pageview"
	"github.com/wethinkt/go-folio/internal/server"
	"github.com/wethinkt/go-folio/internal/summary"
	"github.com/wethinkt/go-folio/internal/tui"
	"github.com/wethinkt/go-folio/internal/tuilog"
)

// read command flags
var (
	readPage      int
	readSummaries string
	readLayout    string
	readListen    bool
	readAddr      string
	readToken     string
	readNoWatch   bool
	readNoAnimate bool
)

var readCmd = &cobra.Command{
	Use:   "read <file>",
	Short: "Open a document in the reader",
	Long: `Open a PDF or text document next to its summaries.

Summaries are read from <file>.summaries.toml when it exists, or from the
file given with --summaries. The last reading position is restored unless
--page is given.

With --listen, an HTTP server exposes the reader:
  GET  /v1/position   current position
  POST /v1/navigate   {"page": N} jumps to a page
  GET  /v1/events     websocket stream of position events
  GET  /v1/mcp        MCP tools get_position and navigate_to_page (SSE)
  GET  /metrics       Prometheus metrics

Set FOLIO_TOKEN or --token to require a bearer token.

Examples:
  folio read report.pdf
  folio read report.pdf --page 120 --layout summary-right
  folio read report.pdf --listen --addr 127.0.0.1:8790`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func addReadFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVarP(&readPage, "page", "p", 0, "start at this page instead of the saved position")
	f.StringVarP(&readSummaries, "summaries", "s", "", "summaries file (default: <file>.summaries.toml)")
	f.StringVar(&readLayout, "layout", "", "pane layout: summary-left or summary-right")
	f.BoolVar(&readListen, "listen", false, "serve position events over HTTP")
	f.StringVar(&readAddr, "addr", "", "listen address for --listen (default from config)")
	f.StringVar(&readToken, "token", "", "bearer token for --listen (default: $FOLIO_TOKEN)")
	f.BoolVar(&readNoWatch, "no-watch", false, "don't reload when the file changes")
	f.BoolVar(&readNoAnimate, "no-animate", false, "disable smooth scrolling")
}

func runRead(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if readLayout != "" {
		if readLayout != config.LayoutSummaryLeft && readLayout != config.LayoutSummaryRight {
			return fmt.Errorf("invalid layout %q (want %s or %s)", readLayout, config.LayoutSummaryLeft, config.LayoutSummaryRight)
		}
		cfg.Layout = readLayout
	}
	if readPage < 0 {
		return fmt.Errorf("invalid page %d", readPage)
	}
	if !isTTY() {
		return errors.New(i18n.T("cmd.read.noTerminal", "the reader needs a terminal; try 'folio info' instead"))
	}

	src, err := document.Open(path)
	if err != nil {
		return err
	}
	estimate := estimatePages(path, src)

	set, err := loadSummaries(path, readSummaries)
	if err != nil {
		src.Close()
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		src.Close()
		return err
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hub := events.NewHub()
	defer hub.Close()

	var changes <-chan string
	if cfg.Watch.Enabled && !readNoWatch {
		w, err := document.NewWatcher(path, cfg.Watch.DebounceDuration())
		if err != nil {
			tuilog.Log.Warn("runRead: file watching unavailable", "path", path, "error", err)
		} else {
			defer w.Stop()
			changes = w.Start(ctx)
		}
	}

	reader := tui.NewReader(tui.Options{
		Path:           path,
		DocID:          document.ID(path),
		Source:         src,
		EstimatedPages: estimate,
		Summaries:      set,
		Store:          store,
		Hub:            hub,
		Config:         cfg,
		StartPage:      readPage,
		Changes:        changes,
		Animate:        !readNoAnimate,
	})
	defer reader.Close()
	p := tui.NewProgram(reader)

	var srv *server.Server
	if readListen {
		var scfg server.Config
		srv, scfg, err = newEventServer(cmd, cfg, hub, tui.ProgramNavigator(p))
		if err != nil {
			return err
		}
		registerInstance(path, scfg)
		defer config.UnregisterInstance(os.Getpid())
	}

	tuilog.Log.Info("runRead: starting reader", "path", path, "pages", estimate, "summaries", set.Len(), "listen", readListen)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		p.Quit()
		return nil
	})
	if srv != nil {
		g.Go(func() error {
			return srv.ListenAndServe(gctx)
		})
	}
	err = g.Wait()
	tuilog.Log.Info("runRead: reader exited", "error", err)
	return err
}

// estimatePages returns a fast first page count. PDFs are counted by
// pdfcpu; other sources report their own count.
func estimatePages(path string, src document.Source) int {
	n, err := document.EstimatePageCount(path)
	if err != nil {
		tuilog.Log.Warn("estimatePages: quick count failed", "path", path, "error", err)
	}
	if n > 0 {
		return n
	}
	n, err = src.NumPages()
	if err != nil {
		return 0
	}
	return n
}

// loadSummaries reads the summaries for path. An explicit file must exist;
// the default sidecar is optional.
func loadSummaries(path, explicit string) (*summary.Set, error) {
	if explicit != "" {
		return summary.Load(explicit)
	}
	sidecar := summary.SidecarPath(path)
	if !summary.Exists(sidecar) {
		tuilog.Log.Debug("loadSummaries: no sidecar", "path", sidecar)
		return summary.Empty(), nil
	}
	return summary.Load(sidecar)
}

func newEventServer(cmd *cobra.Command, cfg config.Config, hub *events.Hub, nav pageview.Navigator) (*server.Server, server.Config, error) {
	scfg := server.Config{Host: cfg.Server.Host, Port: cfg.Server.Port}
	if readAddr != "" {
		host, port, err := splitHostPort(readAddr)
		if err != nil {
			return nil, scfg, err
		}
		scfg.Host, scfg.Port = host, port
	}
	scfg.Auth = server.AuthConfigFor(readToken)

	// Refuse to expose navigation beyond loopback without a token.
	if !scfg.Auth.Enabled() && !isLoopback(scfg.Host) {
		auth, err := server.GeneratedAuthConfig()
		if err != nil {
			return nil, scfg, err
		}
		scfg.Auth = auth
		fmt.Fprintln(cmd.ErrOrStderr(), i18n.Tf("cmd.read.generatedToken", "Listening on %s with token %s", scfg.Host, auth.Token))
	}
	return server.New(hub, nav, scfg), scfg, nil
}

// registerInstance records the event server so other folio commands can
// find it. Failure only costs discoverability.
func registerInstance(path string, scfg server.Config) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	inst := config.Instance{
		PID:       os.Getpid(),
		DocID:     document.ID(path),
		Path:      abs,
		Host:      scfg.Host,
		Port:      scfg.Port,
		Auth:      scfg.Auth.Enabled(),
		StartedAt: time.Now(),
	}
	if err := config.RegisterInstance(inst); err != nil {
		tuilog.Log.Warn("registerInstance: failed", "error", err)
	}
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid --addr %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port in --addr %q", addr)
	}
	return host, port, nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
