package watermark

import (
	"context"
	"fmt"
	"sync"
	"time"

	"snowflake-backend/snowflake"

	"go.uber.org/zap"
)

// Source is the generator whose progress is kept.
type Source interface {
	Config() (regionID, workerID int64, ok bool)
	LastMillis() int64
	Resume(millis int64)
	Reconfigure(regionID, workerID, floor int64) error
}

type Keeper struct {
	store    Store
	source   Source
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	savedKey Key
	saved    int64
}

func NewKeeper(store Store, source Source, interval time.Duration, logger *zap.Logger) *Keeper {
	return &Keeper{
		store:    store,
		source:   source,
		interval: interval,
		logger:   logger,
	}
}

// floor turns a saved mark into the millisecond to resume after. A mark may be
// up to one interval behind what the previous process really minted.
func (k *Keeper) floor(mark int64) int64 {
	if mark == 0 {
		return 0
	}
	return mark + k.interval.Milliseconds()
}

// Restore resumes the configured source past its saved mark and returns the
// floor it resumed at, zero when nothing was saved.
func (k *Keeper) Restore(ctx context.Context) (int64, error) {
	regionID, workerID, ok := k.source.Config()
	if !ok {
		return 0, fmt.Errorf("restoring watermark: %w", snowflake.ErrNotConfigured)
	}
	key := Key{regionID, workerID}
	mark, err := k.store.Load(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("loading watermark for %s: %w", key, err)
	}

	floor := k.floor(mark)
	k.source.Resume(floor)
	k.remember(key, mark)

	k.logger.Info("restored watermark",
		zap.Stringer("key", key),
		zap.Int64("mark", mark),
		zap.Int64("floor", floor),
	)
	return floor, nil
}

// Reconfigure switches the source to a new identity, resuming past whatever
// mark is stored for that identity.
func (k *Keeper) Reconfigure(ctx context.Context, regionID, workerID int64) error {
	// flush progress made under the old identity first
	if err := k.Flush(ctx); err != nil {
		return err
	}

	key := Key{regionID, workerID}
	mark, err := k.store.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("loading watermark for %s: %w", key, err)
	}
	if err := k.source.Reconfigure(regionID, workerID, k.floor(mark)); err != nil {
		return err
	}
	k.remember(key, mark)
	return nil
}

func (k *Keeper) remember(key Key, mark int64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.savedKey = key
	k.saved = mark
}

// Flush saves the source's last millisecond if it moved since the last save.
func (k *Keeper) Flush(ctx context.Context) error {
	regionID, workerID, ok := k.source.Config()
	if !ok {
		return nil
	}
	key := Key{regionID, workerID}
	last := k.source.LastMillis()

	k.mu.Lock()
	defer k.mu.Unlock()
	if key != k.savedKey {
		k.savedKey = key
		k.saved = 0
	}
	if last <= k.saved {
		return nil
	}
	if err := k.store.Save(ctx, key, last); err != nil {
		return fmt.Errorf("saving watermark for %s: %w", key, err)
	}
	k.saved = last
	return nil
}

// Run flushes every interval until ctx is done, then flushes a final time.
func (k *Keeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := k.Flush(ctx); err != nil {
				k.logger.Error("failed to flush watermark", zap.Error(err))
			}
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return k.Flush(final)
		}
	}
}
