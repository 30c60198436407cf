package config

type SnowflakeConfig struct {
	RegionID int64 `mapstructure:"region_id" validate:"gte=0"`
	WorkerID int64 `mapstructure:"worker_id" validate:"gte=0"`
	// WorkerIDFromHostname takes the worker id from the statefulset ordinal
	// in the hostname instead of worker_id.
	WorkerIDFromHostname  bool   `mapstructure:"worker_id_from_hostname"`
	WorkerHostnamePattern string `mapstructure:"worker_hostname_pattern" validate:"required"`
	MaxBatchSize          int    `mapstructure:"max_batch_size" validate:"gt=0"`
}
