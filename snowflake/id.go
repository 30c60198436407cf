package snowflake

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is a minted snowflake id. It is a plain value with no lifecycle.
type ID int64

// ParseID parses the decimal form produced by ID.String.
func ParseID(s string) (ID, error) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidID)
	}
	if i < 0 {
		return 0, fmt.Errorf("%q is negative: %w", s, ErrInvalidID)
	}
	return ID(i), nil
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// MarshalJSON encodes the id as a string, javascript numbers can't hold 63 bits.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("id must be a json string: %w", ErrInvalidID)
	}
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Decoded holds the fields packed into an ID.
type Decoded struct {
	// TimestampMillis is unix time in milliseconds, the epoch already added back.
	TimestampMillis int64 `json:"timestamp_ms"`
	RegionID        int64 `json:"region_id"`
	WorkerID        int64 `json:"worker_id"`
	Sequence        int64 `json:"sequence"`
}

func (d Decoded) Time() time.Time {
	return time.UnixMilli(d.TimestampMillis).UTC()
}

// Decode reverses the packing done by Generator.NextID. It never fails; any
// 64 bit value yields well defined, if meaningless, fields.
func Decode(id ID) Decoded {
	v := uint64(id)
	return Decoded{
		TimestampMillis: int64(v>>TimeShift) + Epoch,
		RegionID:        int64(v>>RegionShift) & MaxRegionID,
		WorkerID:        int64(v>>WorkerShift) & MaxWorkerID,
		Sequence:        int64(v) & MaxSequence,
	}
}
