package main

import (
	"os"
	"sync"

	"github.com/tidwall/redcon"
	"github.com/zerodha/logf"

	"github.com/mr-karan/esmkit/internal/game"
)

var (
	// Version of the build. This is injected at build-time.
	buildString = "unknown"
)

type App struct {
	sync.RWMutex

	lo      logf.Logger
	session *game.Session
}

func main() {
	ko, err := initConfig()
	if err != nil {
		logf.New(logf.Opts{}).Fatal("error loading config", "error", err)
	}
	lo := initLogger(ko)

	session, err := initSession(ko, lo)
	if err != nil {
		lo.Fatal("error resolving load order", "error", err)
	}
	if err := session.Load(); err != nil {
		lo.Fatal("error loading archives", "error", err)
	}

	app := &App{
		lo:      lo,
		session: session,
	}

	mux := redcon.NewServeMux()
	mux.HandleFunc("ping", app.ping)
	mux.HandleFunc("quit", app.quit)
	mux.HandleFunc("version", app.version)
	mux.HandleFunc("masters", app.masters)
	mux.HandleFunc("order", app.order)
	mux.HandleFunc("tables", app.tables)
	mux.HandleFunc("count", app.count)
	mux.HandleFunc("keys", app.keys)
	mux.HandleFunc("has", app.has)
	mux.HandleFunc("get", app.get)
	mux.HandleFunc("reload", app.reload)

	addr := ko.String("app.address")
	lo.Info("starting server", "address", addr, "game", session.Family(), "archives", session.Order().Len())

	if err := redcon.ListenAndServe(addr,
		mux.ServeRESP,
		func(conn redcon.Conn) bool {
			return true
		},
		func(conn redcon.Conn, err error) {
			if err != nil {
				lo.Debug("connection closed", "remote", conn.RemoteAddr(), "error", err)
			}
		},
	); err != nil {
		lo.Error("error starting server", "error", err)
		os.Exit(1)
	}
}
