// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rustup queries and installs Rust compilation targets.
package rustup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"sync"

	qerrors "github.com/qiniu/x/errors"

	"github.com/goplus/xbuild/internal/console"
	"github.com/goplus/xbuild/pkgs/target"
)

// ErrNotFound is returned when the rustup executable cannot be found.
var ErrNotFound = errors.New("rustup not found")

// Runner runs an external command and returns its standard output.
type Runner interface {
	Output(ctx context.Context, env []string, name string, args ...string) (string, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

// ExecRunner returns a Runner backed by os/exec.
func ExecRunner() Runner {
	return execRunner{}
}

func (execRunner) Output(ctx context.Context, env []string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s", msg)
		}
		return "", err
	}
	return stdout.String(), nil
}

// Client drives the rustup executable.
type Client struct {
	rustup string
	env    []string
	runner Runner
	log    *console.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRustupPath sets a custom rustup executable path.
func WithRustupPath(path string) Option {
	return func(c *Client) {
		c.rustup = path
	}
}

// WithEnv sets the environment rustup runs with. A nil env inherits the
// current process environment.
func WithEnv(env []string) Option {
	return func(c *Client) {
		c.env = env
	}
}

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(c *Client) {
		c.runner = r
	}
}

// WithLogger sets the logger progress is reported to.
func WithLogger(l *console.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a rustup Client.
func New(opts ...Option) *Client {
	c := &Client{rustup: "rustup", runner: ExecRunner(), log: console.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InstalledTargets lists the installed target triples.
func (c *Client) InstalledTargets(ctx context.Context) ([]string, error) {
	out, err := c.runner.Output(ctx, c.env, c.rustup, "target", "list", "--installed")
	if err != nil {
		return nil, fmt.Errorf("list installed targets: %w", err)
	}
	var triples []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			triples = append(triples, line)
		}
	}
	return triples, nil
}

// NewCache returns an empty installed-target cache bound to c.
func (c *Client) NewCache() *Cache {
	return &Cache{client: c}
}

// AddTarget installs triple unless cache already reports it installed.
// A successful install invalidates cache.
func (c *Client) AddTarget(ctx context.Context, cache *Cache, triple string) error {
	ok, err := cache.Has(ctx, triple)
	if err != nil {
		return err
	}
	if ok {
		c.log.Debug("Target %s is already installed", triple)
		return nil
	}
	c.log.Info("Adding Rust target: %s", triple)
	if _, err := c.runner.Output(ctx, c.env, c.rustup, "target", "add", triple); err != nil {
		return fmt.Errorf("add target %s: %w", triple, err)
	}
	cache.Invalidate()
	c.log.Success("Target %s added", triple)
	return nil
}

// EnsureTargets adds every target in targets, continuing past failures.
// It returns the combined error of all failed targets.
func (c *Client) EnsureTargets(ctx context.Context, cache *Cache, targets []target.Descriptor) error {
	var errs qerrors.List
	for _, t := range targets {
		if err := c.AddTarget(ctx, cache, t.Triple); err != nil {
			c.log.Error("%v", err)
			errs.Add(err)
		}
	}
	return errs.ToError()
}

// Cache memoizes the installed-target set of a Client. The zero value is
// not usable; create one with Client.NewCache. It is safe for concurrent
// use.
type Cache struct {
	client *Client

	mu        sync.Mutex
	installed map[string]bool
}

// Installed returns the installed triples, querying rustup on first use
// or after Invalidate.
func (c *Cache) Installed(ctx context.Context) (map[string]bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.installed == nil {
		triples, err := c.client.InstalledTargets(ctx)
		if err != nil {
			return nil, err
		}
		c.installed = make(map[string]bool, len(triples))
		for _, t := range triples {
			c.installed[t] = true
		}
	}
	out := make(map[string]bool, len(c.installed))
	for k := range c.installed {
		out[k] = true
	}
	return out, nil
}

// Has reports whether triple is installed.
func (c *Cache) Has(ctx context.Context, triple string) (bool, error) {
	installed, err := c.Installed(ctx)
	if err != nil {
		return false, err
	}
	return installed[triple], nil
}

// Invalidate drops the memoized set.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.installed = nil
	c.mu.Unlock()
}
