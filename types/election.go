package types

import (
	"encoding/binary"
	"strconv"
)

// ElectionID identifies an election across the engine.
type ElectionID uint64

// Marshal returns the 8-byte big-endian encoding, used as storage key.
func (e ElectionID) Marshal() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(e))
	return b
}

// ElectionIDFromBytes decodes the output of Marshal.
func ElectionIDFromBytes(b []byte) ElectionID {
	if len(b) < 8 {
		return 0
	}
	return ElectionID(binary.BigEndian.Uint64(b[:8]))
}

// ParseElectionID parses a decimal election identifier.
func ParseElectionID(s string) (ElectionID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ElectionID(v), nil
}

func (e ElectionID) String() string {
	return strconv.FormatUint(uint64(e), 10)
}
