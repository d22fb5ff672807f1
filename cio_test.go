package cio_test

import (
	"context"
	"testing"
	"time"

	"github.com/brimscale/cio"
)

type markTask struct {
	done chan struct{}
}

func (task *markTask) Handle(_ context.Context) {
	close(task.done)
}

func TestStartup(t *testing.T) {
	err := cio.Startup()
	if err != nil {
		t.Skip("startup:", err)
	}
	task := &markTask{done: make(chan struct{})}
	execErr := cio.Executors().Execute(context.Background(), task)
	if execErr != nil {
		t.Error(execErr)
	}
	select {
	case <-task.done:
	case <-time.After(5 * time.Second):
		t.Error("task never ran")
	}
	if err = cio.Shutdown(); err != nil {
		t.Error(err)
	}
}

func TestStartupTwice(t *testing.T) {
	err := cio.Startup()
	if err != nil {
		t.Skip("startup:", err)
	}
	defer func() {
		_ = cio.Shutdown()
	}()
	if err = cio.Startup(); err == nil {
		t.Error("second startup succeeded")
	}
}
