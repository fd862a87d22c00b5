package unit

import (
	"fmt"
)

// Unit identifies the unit of a Size value. Byte multiples follow the
// SI (decimal) and IEC (binary) ladders up to exabytes, the largest
// multiples representable in a 64-bit byte count. Sectors and Percent
// are context units: a sector count is meaningless without a sector
// size and a percentage is meaningless without a reference total.
type Unit int

const (
	B Unit = iota
	KB
	MB
	GB
	TB
	PB
	EB
	KiB
	MiB
	GiB
	TiB
	PiB
	EiB
	Sectors
	Percent
)

var unitNames = map[Unit]string{
	B:       "B",
	KB:      "kB",
	MB:      "MB",
	GB:      "GB",
	TB:      "TB",
	PB:      "PB",
	EB:      "EB",
	KiB:     "KiB",
	MiB:     "MiB",
	GiB:     "GiB",
	TiB:     "TiB",
	PiB:     "PiB",
	EiB:     "EiB",
	Sectors: "sectors",
	Percent: "%",
}

var unitsByName = map[string]Unit{}

func init() {
	for u, name := range unitNames {
		unitsByName[name] = u
	}
}

var bytesPerUnit = map[Unit]uint64{
	B:   1,
	KB:  1000,
	MB:  1000 * 1000,
	GB:  1000 * 1000 * 1000,
	TB:  1000 * 1000 * 1000 * 1000,
	PB:  1000 * 1000 * 1000 * 1000 * 1000,
	EB:  1000 * 1000 * 1000 * 1000 * 1000 * 1000,
	KiB: 1 << 10,
	MiB: 1 << 20,
	GiB: 1 << 30,
	TiB: 1 << 40,
	PiB: 1 << 50,
	EiB: 1 << 60,
}

// binaryLadder is ordered largest first for FormatHighest.
var binaryLadder = []Unit{EiB, PiB, TiB, GiB, MiB, KiB, B}

func (u Unit) String() string {
	if name, found := unitNames[u]; found {
		return name
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// IsByteMultiple reports whether the unit converts to bytes without
// extra context.
func (u Unit) IsByteMultiple() bool {
	_, found := bytesPerUnit[u]
	return found
}

func (u Unit) MarshalText() ([]byte, error) {
	name, found := unitNames[u]
	if !found {
		return nil, fmt.Errorf("Unknown size unit '%d'", int(u))
	}
	return []byte(name), nil
}

func (u *Unit) UnmarshalText(text []byte) error {
	parsed, found := unitsByName[string(text)]
	if !found {
		return fmt.Errorf("Unknown size unit '%s'", string(text))
	}
	*u = parsed
	return nil
}
