package watermark

import "context"

// NopStore remembers nothing. It is used when no backend is configured.
type NopStore struct{}

func (NopStore) Load(context.Context, Key) (int64, error) { return 0, nil }
func (NopStore) Save(context.Context, Key, int64) error   { return nil }
func (NopStore) Ping(context.Context) error               { return nil }
