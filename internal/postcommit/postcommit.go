// Package postcommit runs side effects after a primary mutation has
// committed. Hooks are isolated from the request and from each other: a
// failure or panic in one is logged and the rest still run.
package postcommit

import (
	"fmt"
	"log/slog"
)

type Hook struct {
	Name string
	Run  func() error
}

type Runner struct {
	logger *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes each hook in order. Errors never propagate to the caller.
func (r *Runner) Run(hooks ...Hook) {
	for _, h := range hooks {
		if err := safeRun(h.Run); err != nil {
			r.logger.Error("post-commit hook", "hook", h.Name, "error", err)
		}
	}
}

func safeRun(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn()
}
