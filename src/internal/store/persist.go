package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/yaffw/watchstore/src/internal/metrics"
	"github.com/yaffw/watchstore/src/internal/ports"
)

const defaultWriteTimeout = 10 * time.Second

var errPersisterClosed = errors.New("persister closed with writes outstanding")

// persister mirrors list snapshots into the blob store in the background.
//
// Each key has its own writer goroutine and a single pending slot. A submit
// bumps the key's version and replaces the slot, and the writer always takes
// the newest snapshot, so writes to one key never overlap and the last
// snapshot submitted is the last one to land. Snapshots replaced before the
// writer got to them are dropped.
type persister struct {
	blobs        ports.BlobStore
	logger       zerolog.Logger
	debounce     time.Duration
	writeTimeout time.Duration

	slots  map[string]*slot
	stop   chan struct{}
	closed atomic.Bool
	wg     sync.WaitGroup
}

type slot struct {
	key  string
	kick chan struct{}

	mu      sync.Mutex
	value   any
	issued  uint64
	landed  uint64
	lastErr error
	landing chan struct{} // closed and replaced whenever landed advances
}

func newPersister(blobs ports.BlobStore, logger zerolog.Logger, debounce time.Duration) *persister {
	p := &persister{
		blobs:        blobs,
		logger:       logger,
		debounce:     debounce,
		writeTimeout: defaultWriteTimeout,
		slots:        make(map[string]*slot, len(allKeys)),
		stop:         make(chan struct{}),
	}
	for _, key := range allKeys {
		s := &slot{
			key:     key,
			kick:    make(chan struct{}, 1),
			landing: make(chan struct{}),
		}
		p.slots[key] = s
		p.wg.Add(1)
		go p.run(s)
	}
	return p
}

// submit queues value as the newest snapshot for key. It never blocks on I/O.
// Callers must not mutate value afterwards.
func (p *persister) submit(key string, value any) {
	s, ok := p.slots[key]
	if !ok {
		p.logger.Error().Str("key", key).Msg("unknown persistence key")
		return
	}

	s.mu.Lock()
	// Checked under s.mu so close can fence off in-flight submits.
	if p.closed.Load() {
		s.mu.Unlock()
		p.logger.Warn().Str("key", key).Msg("persister closed, dropping snapshot")
		return
	}
	s.issued++
	s.value = value
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (p *persister) run(s *slot) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			return
		case <-s.kick:
		}

		if p.debounce > 0 {
			timer := time.NewTimer(p.debounce)
			select {
			case <-timer.C:
			case <-p.stop:
				timer.Stop()
				return
			}
		}

		s.mu.Lock()
		version, value, prev := s.issued, s.value, s.landed
		s.mu.Unlock()
		if version == prev {
			continue
		}

		err := p.write(s.key, value)

		s.mu.Lock()
		s.landed = version
		s.lastErr = err
		close(s.landing)
		s.landing = make(chan struct{})
		s.mu.Unlock()

		metrics.RecordPersistWrite(s.key, err)
		metrics.RecordPersistSuperseded(s.key, version-prev-1)
	}
}

func (p *persister) write(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		p.logger.Error().Err(err).Str("key", key).Msg("failed to encode snapshot")
		return fmt.Errorf("encode %s: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()

	if err := p.blobs.Set(ctx, key, string(raw)); err != nil {
		p.logger.Error().Err(err).Str("key", key).Msg("failed to persist")
		return fmt.Errorf("persist %s: %w", key, err)
	}
	p.logger.Debug().Str("key", key).Int("bytes", len(raw)).Msg("persisted")
	return nil
}

// flush waits until every snapshot submitted before the call has been
// written or has failed.
func (p *persister) flush(ctx context.Context) error {
	for _, key := range allKeys {
		s := p.slots[key]

		s.mu.Lock()
		target := s.issued
		s.mu.Unlock()

		for {
			s.mu.Lock()
			if s.landed >= target {
				s.mu.Unlock()
				break
			}
			landing := s.landing
			s.mu.Unlock()

			select {
			case <-landing:
			case <-p.stop:
				return errPersisterClosed
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// lastError returns the outcome of the most recent write for key.
func (p *persister) lastError(key string) error {
	s, ok := p.slots[key]
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// close flushes pending snapshots and stops the writers. Snapshots submitted
// afterwards are dropped.
func (p *persister) close(ctx context.Context) error {
	if p.closed.Swap(true) {
		return nil
	}
	// Wait out submits that saw the persister open; later ones are dropped.
	for _, key := range allKeys {
		s := p.slots[key]
		s.mu.Lock()
		s.mu.Unlock() //nolint:staticcheck // empty critical section is the fence
	}
	err := p.flush(ctx)
	close(p.stop)
	p.wg.Wait()
	return err
}
