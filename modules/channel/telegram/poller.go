package telegram

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	maxConsecutivePollingErrors = 5
	errorPauseDuration          = 30 * time.Second

	// maxConcurrentUpdates bounds updates handled in parallel.
	maxConcurrentUpdates = 16

	// updateTimeout bounds the handling of one update. Telegram drops
	// inline answers sent later than about ten seconds.
	updateTimeout = 15 * time.Second
)

// UpdateHandler processes one update.
type UpdateHandler func(ctx context.Context, u *Update)

// Poller implements long-polling for receiving Telegram updates.
// Each update is handled on its own goroutine.
type Poller struct {
	client   *Client
	handle   UpdateHandler
	logger   *slog.Logger
	config   Config
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	sem      chan struct{}
	inflight sync.WaitGroup
	stopOnce sync.Once
}

// NewPoller creates a new Poller.
func NewPoller(client *Client, handle UpdateHandler, logger *slog.Logger, config Config) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		client: client,
		handle: handle,
		logger: logger,
		config: config,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		sem:    make(chan struct{}, maxConcurrentUpdates),
	}
}

// Start launches the polling loop in a goroutine.
func (p *Poller) Start() {
	go p.loop()
}

// Stop ends the polling loop and waits for in-flight updates.
// It is safe to call Stop multiple times.
func (p *Poller) Stop() {
	p.stopOnce.Do(p.cancel)
	<-p.done
	p.inflight.Wait()
}

// loop runs the long-polling loop until Stop() is called.
func (p *Poller) loop() {
	defer close(p.done)

	var offset int
	var consecutiveErrors int

	for {
		if p.ctx.Err() != nil {
			return
		}

		updates, err := p.client.GetUpdates(p.ctx, GetUpdatesRequest{
			Offset:         offset,
			Timeout:        p.config.PollingTimeout,
			AllowedUpdates: p.config.AllowedUpdates,
		})
		if err != nil {
			if p.ctx.Err() != nil {
				return
			}
			consecutiveErrors++
			p.logger.Error("polling getUpdates failed",
				"error", err,
				"consecutive_errors", consecutiveErrors,
			)

			if consecutiveErrors >= maxConsecutivePollingErrors {
				p.logger.Warn("polling paused after consecutive errors",
					"pause", errorPauseDuration,
				)
				select {
				case <-p.ctx.Done():
					return
				case <-time.After(errorPauseDuration):
				}
				consecutiveErrors = 0
			}
			continue
		}

		consecutiveErrors = 0

		for i := range updates {
			offset = updates[i].UpdateID + 1
			p.dispatch(&updates[i])
		}
	}
}

// dispatch hands an update to the handler on its own goroutine. Handlers
// get a context independent of the poll so Stop lets them finish.
func (p *Poller) dispatch(u *Update) {
	select {
	case p.sem <- struct{}{}:
	case <-p.ctx.Done():
		return
	}

	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		defer func() { <-p.sem }()

		ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
		defer cancel()
		p.handle(ctx, u)
	}()
}
