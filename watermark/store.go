package watermark

import (
	"context"
	"fmt"
)

// Key identifies the generator a mark belongs to.
type Key struct {
	RegionID int64
	WorkerID int64
}

func (k Key) String() string {
	return fmt.Sprintf("region-%d/worker-%d", k.RegionID, k.WorkerID)
}

// Store persists marks. Load returns zero and no error when the key has never
// been saved.
type Store interface {
	Load(ctx context.Context, key Key) (int64, error)
	Save(ctx context.Context, key Key, millis int64) error
	Ping(ctx context.Context) error
}
