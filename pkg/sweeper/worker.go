package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/klazomenai/landing-service/pkg/storage"
)

// Worker configuration
type WorkerConfig struct {
	CheckInterval time.Duration // How often to purge expired views
}

// Worker evicts mounted views whose TTL has elapsed
type Worker struct {
	config   *WorkerConfig
	store    storage.Store
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewWorker creates a new expiry worker
func NewWorker(config *WorkerConfig, store storage.Store) *Worker {
	return &Worker{
		config:   config,
		store:    store,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start runs the purge loop until Stop is called
func (w *Worker) Start() {
	log.Printf("Starting view sweeper (check_interval=%s)", w.config.CheckInterval)

	ticker := time.NewTicker(w.config.CheckInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.sweep()

	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-w.stopChan:
			log.Println("View sweeper stopping...")
			close(w.doneChan)
			return
		}
	}
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("View sweeper stopped")
}

// sweep purges expired views once and reports how many were removed
func (w *Worker) sweep() int {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := w.store.PurgeExpired(ctx)
	if err != nil {
		log.Printf("Failed to purge expired views: %v", err)
		return purged
	}

	if purged > 0 {
		log.Printf("Sweep complete: purged=%d", purged)
	}
	return purged
}
