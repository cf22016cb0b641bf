package utils

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type ShutdownManager struct {
	cancelFunc    context.CancelFunc
	shutdownTasks []func(context.Context) error
	log           *zap.Logger
	mu            sync.Mutex
}

func NewShutdownManager(ctx context.Context, log *zap.Logger) (context.Context, *ShutdownManager) {
	ctx, cancel := context.WithCancel(ctx)
	manager := &ShutdownManager{
		cancelFunc: cancel,
		log:        log,
	}
	return ctx, manager
}

func (sm *ShutdownManager) Register(task func(context.Context) error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.shutdownTasks = append(sm.shutdownTasks, task)
}

func (sm *ShutdownManager) StartListening() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		sm.log.Info("shutdown signal received", zap.Stringer("signal", sig))
		sm.cancelFunc()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		sm.mu.Lock()
		defer sm.mu.Unlock()
		for _, task := range sm.shutdownTasks {
			if err := task(ctx); err != nil {
				sm.log.Error("shutdown task failed", zap.Error(err))
			}
		}

		sm.log.Info("graceful shutdown complete")
		os.Exit(0)
	}()
}
