package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	inheritEnvKey   = "SCHOOLSITE_INHERIT_LISTENER"
	inheritEnvValue = inheritEnvKey + "=1"
	// stdin, stdout and stderr come first in the child's file table
	inheritedListenerFd = 3
)

// ServerOptions tunes the HTTP server. Zero values fall back to sane defaults.
type ServerOptions struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// OnShutdown hooks run once the server starts draining, e.g. to stop background workers.
	OnShutdown []func()
}

func (o ServerOptions) withDefaults() ServerOptions {
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = time.Minute
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 2 * time.Minute
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 30 * time.Second
	}
	return o
}

// Server drains on SIGTERM/SIGINT and hands its listener to a fresh process on SIGUSR2.
type Server struct {
	*http.Server

	opts     ServerOptions
	listener net.Listener
	inherit  bool
	signals  chan os.Signal
	drained  chan struct{}
}

// NewServer builds a Server for handler on addr.
func NewServer(addr string, handler http.Handler, opts ServerOptions) *Server {
	opts = opts.withDefaults()
	srv := &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadTimeout,
			WriteTimeout:      opts.WriteTimeout,
		},
		opts:    opts,
		inherit: os.Getenv(inheritEnvKey) != "",
		signals: make(chan os.Signal, 1),
		drained: make(chan struct{}),
	}
	for _, f := range opts.OnShutdown {
		srv.RegisterOnShutdown(f)
	}
	return srv
}

// ListenAndServe serves until a shutdown signal has been handled.
func (srv *Server) ListenAndServe() error {
	ln, err := srv.listen()
	if err != nil {
		return err
	}
	srv.listener = ln

	signal.Notify(srv.signals, syscall.SIGTERM, syscall.SIGINT, syscall.SIGUSR2)
	go srv.watchSignals()

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-srv.drained
	return nil
}

func (srv *Server) listen() (net.Listener, error) {
	if srv.inherit {
		ln, err := net.FileListener(os.NewFile(inheritedListenerFd, "listener"))
		if err != nil {
			return nil, fmt.Errorf("inherit listener: %w", err)
		}
		Logger.Info("serving on inherited listener", zap.String("addr", ln.Addr().String()))
		return ln, nil
	}
	addr := srv.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

func (srv *Server) watchSignals() {
	for sig := range srv.signals {
		switch sig {
		case syscall.SIGTERM, syscall.SIGINT:
			Logger.Info("shutting down", zap.String("signal", sig.String()))
			srv.drain()
			return
		case syscall.SIGUSR2:
			pid, err := srv.handOver()
			if err != nil {
				Logger.Error("restart failed, still serving", zap.Error(err))
				continue
			}
			Logger.Info("restarted", zap.Int("pid", pid))
			srv.drain()
			return
		}
	}
}

func (srv *Server) drain() {
	signal.Stop(srv.signals)
	defer close(srv.drained)

	ctx, cancel := context.WithTimeout(context.Background(), srv.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		Logger.Error("shutdown", zap.Error(err))
		return
	}
	Logger.Info("server drained")
}

// handOver starts a copy of this binary that inherits the listening socket.
func (srv *Server) handOver() (int, error) {
	tcp, ok := srv.listener.(*net.TCPListener)
	if !ok {
		return 0, fmt.Errorf("listener %T cannot be inherited", srv.listener)
	}
	file, err := tcp.File()
	if err != nil {
		return 0, fmt.Errorf("listener file: %w", err)
	}
	defer file.Close()

	env := make([]string, 0, len(os.Environ())+1)
	for _, e := range os.Environ() {
		if e != inheritEnvValue {
			env = append(env, e)
		}
	}
	env = append(env, inheritEnvValue)

	pid, err := syscall.ForkExec(os.Args[0], os.Args, &syscall.ProcAttr{
		Env:   env,
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd(), file.Fd()},
	})
	if err != nil {
		return 0, fmt.Errorf("fork exec: %w", err)
	}
	return pid, nil
}

// GraceServer runs handler on addr until it is told to stop.
func GraceServer(addr string, handler http.Handler, opts ServerOptions) error {
	return NewServer(addr, handler, opts).ListenAndServe()
}
