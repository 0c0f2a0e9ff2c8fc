package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/redcon"
	"gopkg.in/yaml.v3"

	"github.com/mr-karan/esmkit/pkg/esm"
)

func wrongArgs(conn redcon.Conn, cmd redcon.Command) {
	conn.WriteError("ERR wrong number of arguments for '" + string(cmd.Args[0]) + "' command")
}

// table resolves the record type argument of a command.
func (app *App) table(conn redcon.Conn, arg []byte) (esm.Table, bool) {
	tag := esm.Tag(strings.ToUpper(string(arg)))
	t, ok := app.session.DB().Registry().Table(tag)
	if !ok {
		conn.WriteError("ERR unknown record type '" + string(arg) + "'")
		return nil, false
	}
	return t, true
}

func (app *App) ping(conn redcon.Conn, cmd redcon.Command) {
	conn.WriteString("PONG")
}

func (app *App) quit(conn redcon.Conn, cmd redcon.Command) {
	conn.WriteString("OK")
	conn.Close()
}

func (app *App) version(conn redcon.Conn, cmd redcon.Command) {
	conn.WriteBulkString(buildString)
}

// masters lists the dependencies each loaded archive declares.
func (app *App) masters(conn redcon.Conn, cmd redcon.Command) {
	app.RLock()
	defer app.RUnlock()

	results := app.session.Results
	conn.WriteArray(len(results))
	for _, res := range results {
		ms := res.Header.Masters()
		conn.WriteArray(len(ms) + 1)
		conn.WriteBulkString(res.Path)
		for _, m := range ms {
			conn.WriteBulkString(m.Name)
		}
	}
}

func (app *App) order(conn redcon.Conn, cmd redcon.Command) {
	app.RLock()
	defer app.RUnlock()

	names := app.session.Order().Names()
	conn.WriteArray(len(names))
	for _, n := range names {
		conn.WriteBulkString(n)
	}
}

func (app *App) tables(conn redcon.Conn, cmd redcon.Command) {
	app.RLock()
	defer app.RUnlock()

	tables := app.session.DB().Registry().Tables()
	conn.WriteArray(len(tables))
	for _, t := range tables {
		conn.WriteBulkString(t.Tag().String())
	}
}

func (app *App) count(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 2 {
		wrongArgs(conn, cmd)
		return
	}
	app.RLock()
	defer app.RUnlock()

	t, ok := app.table(conn, cmd.Args[1])
	if !ok {
		return
	}
	conn.WriteInt(t.Len())
}

func (app *App) keys(conn redcon.Conn, cmd redcon.Command) {
	var limit int
	switch len(cmd.Args) {
	case 3:
		n, err := strconv.Atoi(string(cmd.Args[2]))
		if err != nil || n < 0 {
			conn.WriteError("ERR invalid limit " + string(cmd.Args[2]))
			return
		}
		limit = n
	case 2:
	default:
		wrongArgs(conn, cmd)
		return
	}
	app.RLock()
	defer app.RUnlock()

	t, ok := app.table(conn, cmd.Args[1])
	if !ok {
		return
	}
	keys := t.Keys(limit)
	conn.WriteArray(len(keys))
	for _, k := range keys {
		conn.WriteBulkString(k)
	}
}

func (app *App) has(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 3 {
		wrongArgs(conn, cmd)
		return
	}
	app.RLock()
	defer app.RUnlock()

	t, ok := app.table(conn, cmd.Args[1])
	if !ok {
		return
	}
	if _, err := t.Lookup(string(cmd.Args[2])); err != nil {
		conn.WriteInt(0)
		return
	}
	conn.WriteInt(1)
}

// get renders the record as YAML.
func (app *App) get(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 3 {
		wrongArgs(conn, cmd)
		return
	}
	app.RLock()
	defer app.RUnlock()

	t, ok := app.table(conn, cmd.Args[1])
	if !ok {
		return
	}
	rec, err := t.Lookup(string(cmd.Args[2]))
	if err != nil {
		conn.WriteNull()
		return
	}
	b, err := yaml.Marshal(rec)
	if err != nil {
		conn.WriteError(fmt.Sprintf("ERR: %s", err))
		return
	}

	conn.WriteBulk(b)
}

// reload reads the load order from disk again.
func (app *App) reload(conn redcon.Conn, cmd redcon.Command) {
	app.Lock()
	defer app.Unlock()

	if err := app.session.Load(); err != nil {
		app.lo.Error("error reloading archives", "error", err)
		conn.WriteError(fmt.Sprintf("ERR: %s", err))
		return
	}
	conn.WriteString("OK")
}
