package domain

import "errors"

var (
	// ErrUnknownMission is returned for a mission index outside the table.
	ErrUnknownMission = errors.New("unknown mission")

	// ErrBufferCapacity means the raw accumulation buffers are undersized for
	// the mission. The fix is a larger buffer power, not a data change.
	ErrBufferCapacity = errors.New("accumulation buffer capacity exceeded, increase BUFFER_POWER")

	// ErrNoQCRecords means too few records survived quality control and the
	// date window to produce any output.
	ErrNoQCRecords = errors.New("no satellite records within the given date range and quality control parameters")

	// ErrOutputCapacity means collocation produced more records than the
	// output buffers were sized for.
	ErrOutputCapacity = errors.New("collocated output capacity exceeded")
)
