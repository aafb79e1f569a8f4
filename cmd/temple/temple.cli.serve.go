package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/itsatony/go-temple"
)

// serveConfig holds parsed serve command configuration
type serveConfig struct {
	configPath  string
	addr        string
	sessionPath string
	verbose     bool
}

func runServe(args []string, stderr io.Writer) int {
	cfg, err := parseServeFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	session, err := loadJSONFile(cfg.sessionPath)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidAmbient, err)
		return ExitCodeInputError
	}

	level := zapcore.InfoLevel
	if cfg.verbose {
		level = zapcore.DebugLevel
	}
	logger := newConsoleLogger(stderr, level)
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	metrics, err := temple.NewMetrics(reg)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgMetricsFailed, err)
		return ExitCodeError
	}

	engine, source, msg, err := buildEngine(cfg.configPath, logger, temple.WithMetrics(metrics))
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, msg, err)
		return ExitCodeInputError
	}
	if source == nil {
		fmt.Fprintln(stderr, ErrMsgServeNeedsSource)
		return ExitCodeUsageError
	}
	defer source.Close()

	server := &http.Server{
		Addr:              cfg.addr,
		Handler:           newServeHandler(engine, reg, session, logger),
		ReadHeaderTimeout: ServeReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info(LogMsgServeStarted, zap.String(LogFieldAddr, cfg.addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgServeFailed, err)
			return ExitCodeError
		}
	case <-ctx.Done():
		logger.Info(LogMsgServeStopping)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ServeShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgServeFailed, err)
			return ExitCodeError
		}
	}

	return ExitCodeSuccess
}

func parseServeFlags(args []string) (*serveConfig, error) {
	fs := flag.NewFlagSet(CmdNameServe, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &serveConfig{}
	fs.StringVar(&cfg.configPath, FlagConfig, "", "")
	fs.StringVar(&cfg.configPath, FlagConfigShort, "", "")
	fs.StringVar(&cfg.addr, FlagAddr, FlagDefaultAddr, "")
	fs.StringVar(&cfg.addr, FlagAddrShort, FlagDefaultAddr, "")
	fs.StringVar(&cfg.sessionPath, FlagSession, "", "")
	fs.BoolVar(&cfg.verbose, FlagVerbose, false, "")
	fs.BoolVar(&cfg.verbose, FlagVerboseShort, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.configPath == "" {
		return nil, errors.New(ErrMsgServeNeedsSource)
	}
	return cfg, nil
}

// templateServer renders named templates for HTTP requests
type templateServer struct {
	engine  *temple.Engine
	session map[string]any
	logger  *zap.Logger
}

// newServeHandler routes render, listing, metrics and health requests
func newServeHandler(engine *temple.Engine, gatherer prometheus.Gatherer, session map[string]any, logger *zap.Logger) http.Handler {
	s := &templateServer{engine: engine, session: session, logger: logger}

	r := chi.NewRouter()
	r.Get(RouteRender, s.render)
	r.Get(RouteTemplates, s.list)
	r.Get(RouteHealth, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle(RouteMetrics, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

func (s *templateServer) render(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, URLParamName)
	ambient := requestAmbient(r, s.session)

	out, err := s.engine.RenderTemplate(temple.WithAmbient(r.Context(), ambient), name, ambient.Request)
	if err != nil {
		status := http.StatusInternalServerError
		if temple.IsTemplateNotFound(err) {
			status = http.StatusNotFound
		}
		s.logger.Warn(LogMsgServeFailed,
			zap.String(LogFieldName, name),
			zap.Int(LogFieldStatus, status),
			zap.Error(err))
		http.Error(w, http.StatusText(status), status)
		return
	}

	s.logger.Debug(LogMsgServeRequest, zap.String(LogFieldName, name))
	w.Header().Set(HeaderContentType, ContentTypeText)
	_, _ = io.WriteString(w, out)
}

func (s *templateServer) list(w http.ResponseWriter, r *http.Request) {
	source := s.engine.Source()
	names, err := source.List(r.Context())
	if err != nil {
		s.logger.Warn(ErrMsgListTemplatesFailed, zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set(HeaderContentType, ContentTypeJSON)
	_ = json.NewEncoder(w).Encode(names)
}

// requestAmbient maps query values to req, cookies to cookie and headers
// plus connection facts to srv. Single query values stay strings.
func requestAmbient(r *http.Request, session map[string]any) temple.Ambient {
	request := make(map[string]any)
	for key, values := range r.URL.Query() {
		if len(values) == 1 {
			request[key] = values[0]
			continue
		}
		list := make([]any, len(values))
		for i, v := range values {
			list[i] = v
		}
		request[key] = list
	}

	cookies := make(map[string]any)
	for _, c := range r.Cookies() {
		cookies[c.Name] = c.Value
	}

	server := make(map[string]any)
	for key := range r.Header {
		server[strings.ToLower(key)] = r.Header.Get(key)
	}
	server[AmbientKeyHost] = r.Host
	server[AmbientKeyRemoteAddr] = r.RemoteAddr
	server[AmbientKeyMethod] = r.Method
	server[AmbientKeyPath] = r.URL.Path

	return temple.Ambient{
		Server:  server,
		Request: request,
		Session: session,
		Cookie:  cookies,
	}
}
