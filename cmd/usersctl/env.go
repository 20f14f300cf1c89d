package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Krchnk/gw-crypto-dashboard/internal/config"
	"github.com/Krchnk/gw-crypto-dashboard/internal/storages"
	"github.com/Krchnk/gw-crypto-dashboard/internal/storages/factory"
	"golang.org/x/term"
)

// env carries what every command needs. Tests swap open and the streams.
type env struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	open         func(ctx context.Context) (storages.Storage, error)
	readPassword func(prompt string) (string, error)
}

func newEnv(configPath *string) *env {
	e := &env{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	e.open = func(ctx context.Context) (storages.Storage, error) {
		cfg, err := config.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
		return openStorage(ctx, cfg)
	}
	e.readPassword = e.promptPassword
	return e
}

// openStorage connects and makes sure the schema exists.
func openStorage(ctx context.Context, cfg config.Config) (storages.Storage, error) {
	store, err := factory.NewStorage(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.Initialize(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// promptPassword reads without echo from a terminal, or a single line when
// stdin is piped.
func (e *env) promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(e.errOut, prompt)
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(e.errOut)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	return readLine(e.in)
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
