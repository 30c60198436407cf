package snowflake

// see https://en.wikipedia.org/wiki/Snowflake_ID
//
// An id is laid out, most significant bit first, as
//
//	[1 unused sign bit][41 bit timestamp delta][5 bit region][5 bit worker][12 bit sequence]
//
// The widths are fixed at build time. They are a wire format: every member of
// the fleet, and every id already stored somewhere, depends on them.

const (
	RegionBits    = 5
	WorkerBits    = 5
	SequenceBits  = 12
	TimestampBits = 63 - RegionBits - WorkerBits - SequenceBits

	MaxRegionID  = 1<<RegionBits - 1
	MaxWorkerID  = 1<<WorkerBits - 1
	MaxSequence  = 1<<SequenceBits - 1
	MaxTimestamp = 1<<TimestampBits - 1

	TimeShift   = RegionBits + WorkerBits + SequenceBits
	RegionShift = WorkerBits + SequenceBits
	WorkerShift = SequenceBits

	// Epoch is Sunday 1 January 2023 19:06:40 UTC in unix milliseconds.
	Epoch int64 = 1672600000000
)
