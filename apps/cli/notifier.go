package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/bobur6/professor-ai-helper/core/gradebook"
)

// consoleNotifier prints notifications on their own line.
type consoleNotifier struct {
	mu     sync.Mutex
	out    io.Writer
	failed bool
}

var _ gradebook.Notifier = (*consoleNotifier)(nil)

func (n *consoleNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "ok: %s\n", msg)
}

func (n *consoleNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = true
	fmt.Fprintf(n.out, "error: %s\n", msg)
}
