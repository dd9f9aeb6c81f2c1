// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rustup

import (
	"context"
	"strings"
	"sync"
)

// mockRunner records commands and answers with outputFunc.
type mockRunner struct {
	mu         sync.Mutex
	calls      []string
	outputFunc func(args []string) (string, error)
}

func (m *mockRunner) Output(ctx context.Context, env []string, name string, args ...string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, strings.Join(append([]string{name}, args...), " "))
	m.mu.Unlock()
	if m.outputFunc != nil {
		return m.outputFunc(args)
	}
	return "", nil
}

func (m *mockRunner) count(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// fakeRustup emulates rustup target list/add over an installed set.
func fakeRustup(installed ...string) *mockRunner {
	set := map[string]bool{}
	for _, t := range installed {
		set[t] = true
	}
	var mu sync.Mutex
	return &mockRunner{outputFunc: func(args []string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case len(args) == 3 && args[1] == "list":
			var b strings.Builder
			for t := range set {
				b.WriteString(t + "\n")
			}
			return b.String(), nil
		case len(args) == 3 && args[1] == "add":
			if strings.Contains(args[2], "bogus") {
				return "", errUnknownTarget
			}
			set[args[2]] = true
			return "", nil
		}
		return "", nil
	}}
}
