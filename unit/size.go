package unit

import (
	"fmt"
	"strconv"
)

// SectorSize is the logical sector size of a block device. Sector
// counts are only meaningful against one of these.
type SectorSize struct {
	Value uint64 `json:"value"`
}

// DefaultSectorSize matches the logical sector size reported by the
// overwhelming majority of devices, including 4Kn drives in 512e mode.
var DefaultSectorSize = SectorSize{Value: 512}

// Size is an integer quantity of storage expressed in a Unit. All
// arithmetic normalizes through an exact byte count; no floating point
// is carried between conversions.
type Size struct {
	Value uint64 `json:"value"`
	Unit  Unit   `json:"unit"`
}

func NewSize(value uint64, u Unit) Size {
	return Size{Value: value, Unit: u}
}

// Context supplies the companion values needed when a conversion
// involves Sectors (sector size) or Percent (reference total).
type Context struct {
	SectorSize SectorSize
	Total      *Size
}

// InvalidConversionError is returned when a conversion needs context
// that was not supplied, or the result does not fit in a 64-bit byte
// count.
type InvalidConversionError struct {
	From   Unit
	To     Unit
	Reason string
}

func (e InvalidConversionError) Error() string {
	return fmt.Sprintf("Invalid conversion from %s to %s: %s", e.From, e.To, e.Reason)
}

func mulNoOverflow(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product := a * b
	if product/a != b {
		return 0, false
	}
	return product, true
}

// bytes normalizes the size to its exact byte count.
func (s Size) bytes(target Unit, ctx Context) (uint64, error) {
	if perUnit, found := bytesPerUnit[s.Unit]; found {
		product, ok := mulNoOverflow(s.Value, perUnit)
		if !ok {
			return 0, InvalidConversionError{From: s.Unit, To: target, Reason: "value overflows the addressable byte range"}
		}
		return product, nil
	}

	switch s.Unit {
	case Sectors:
		if ctx.SectorSize.Value == 0 {
			return 0, InvalidConversionError{From: s.Unit, To: target, Reason: "sector size context required"}
		}
		product, ok := mulNoOverflow(s.Value, ctx.SectorSize.Value)
		if !ok {
			return 0, InvalidConversionError{From: s.Unit, To: target, Reason: "value overflows the addressable byte range"}
		}
		return product, nil
	case Percent:
		if ctx.Total == nil {
			return 0, InvalidConversionError{From: s.Unit, To: target, Reason: "total size context required"}
		}
		if ctx.Total.Unit == Percent {
			return 0, InvalidConversionError{From: s.Unit, To: target, Reason: "total size context must not be a percentage"}
		}
		totalBytes, err := ctx.Total.bytes(target, Context{SectorSize: ctx.SectorSize})
		if err != nil {
			return 0, err
		}
		// floor(total * pct / 100), split to stay within 64 bits
		whole, ok1 := mulNoOverflow(totalBytes/100, s.Value)
		rest, ok2 := mulNoOverflow(totalBytes%100, s.Value)
		if !ok1 || !ok2 {
			return 0, InvalidConversionError{From: s.Unit, To: target, Reason: "value overflows the addressable byte range"}
		}
		return whole + rest/100, nil
	}
	return 0, InvalidConversionError{From: s.Unit, To: target, Reason: "unknown unit"}
}

// Convert returns the size expressed in target. Converting to or from
// Sectors requires ctx.SectorSize; to or from Percent requires
// ctx.Total. Byte-multiple targets floor; Sectors targets round up so
// a requested size never under-allocates.
func (s Size) Convert(target Unit, ctx Context) (Size, error) {
	byteCount, err := s.bytes(target, ctx)
	if err != nil {
		return Size{}, err
	}

	if perUnit, found := bytesPerUnit[target]; found {
		return Size{Value: byteCount / perUnit, Unit: target}, nil
	}

	switch target {
	case Sectors:
		if ctx.SectorSize.Value == 0 {
			return Size{}, InvalidConversionError{From: s.Unit, To: target, Reason: "sector size context required"}
		}
		count := (byteCount + ctx.SectorSize.Value - 1) / ctx.SectorSize.Value
		return Size{Value: count, Unit: Sectors}, nil
	case Percent:
		if ctx.Total == nil {
			return Size{}, InvalidConversionError{From: s.Unit, To: target, Reason: "total size context required"}
		}
		totalBytes, err := ctx.Total.bytes(target, Context{SectorSize: ctx.SectorSize})
		if err != nil {
			return Size{}, err
		}
		if totalBytes == 0 {
			return Size{}, InvalidConversionError{From: s.Unit, To: target, Reason: "total size context is zero"}
		}
		product, ok := mulNoOverflow(byteCount, 100)
		if !ok {
			return Size{}, InvalidConversionError{From: s.Unit, To: target, Reason: "value overflows the addressable byte range"}
		}
		return Size{Value: product / totalBytes, Unit: Percent}, nil
	}
	return Size{}, InvalidConversionError{From: s.Unit, To: target, Reason: "unknown unit"}
}

// Bytes normalizes a context-free size. Sectors and Percent sizes
// need Convert with a Context instead.
func (s Size) Bytes() (uint64, error) {
	return s.bytes(B, Context{})
}

// BytesCtx normalizes with context for Sectors and Percent sizes.
func (s Size) BytesCtx(ctx Context) (uint64, error) {
	return s.bytes(B, ctx)
}

// Sectors returns the sector count at the given sector size, rounded
// up.
func (s Size) Sectors(ss SectorSize) (uint64, error) {
	converted, err := s.Convert(Sectors, Context{SectorSize: ss})
	if err != nil {
		return 0, err
	}
	return converted.Value, nil
}

// Add returns the sum in bytes.
func (s Size) Add(other Size) (Size, error) {
	left, err := s.Bytes()
	if err != nil {
		return Size{}, err
	}
	right, err := other.Bytes()
	if err != nil {
		return Size{}, err
	}
	return Size{Value: left + right, Unit: B}, nil
}

// Sub returns the difference in bytes. Differences below zero are an
// error rather than a wrapped value.
func (s Size) Sub(other Size) (Size, error) {
	left, err := s.Bytes()
	if err != nil {
		return Size{}, err
	}
	right, err := other.Bytes()
	if err != nil {
		return Size{}, err
	}
	if right > left {
		return Size{}, fmt.Errorf("Subtracting %s from %s: negative size", other, s)
	}
	return Size{Value: left - right, Unit: B}, nil
}

// Cmp compares normalized byte values: -1 if s < other, 0 if equal,
// 1 if s > other.
func (s Size) Cmp(other Size) (int, error) {
	left, err := s.Bytes()
	if err != nil {
		return 0, err
	}
	right, err := other.Bytes()
	if err != nil {
		return 0, err
	}
	switch {
	case left < right:
		return -1, nil
	case left > right:
		return 1, nil
	}
	return 0, nil
}

func (s Size) String() string {
	return fmt.Sprintf("%d %s", s.Value, s.Unit)
}

// FormatHighest renders the size with the largest binary unit whose
// quotient is at least 1. The underlying byte count is untouched;
// inexact quotients are shown with one decimal.
func (s Size) FormatHighest() string {
	if !s.Unit.IsByteMultiple() {
		return s.String()
	}
	byteCount, err := s.Bytes()
	if err != nil {
		return s.String()
	}

	for _, u := range binaryLadder {
		perUnit := bytesPerUnit[u]
		if byteCount < perUnit {
			continue
		}
		if byteCount%perUnit == 0 {
			return fmt.Sprintf("%d %s", byteCount/perUnit, u)
		}
		quotient := float64(byteCount) / float64(perUnit)
		return fmt.Sprintf("%s %s", strconv.FormatFloat(quotient, 'f', 1, 64), u)
	}
	return fmt.Sprintf("%d B", byteCount)
}

// FormatUnit renders the size converted to a specific unit.
func (s Size) FormatUnit(target Unit, ctx Context) (string, error) {
	converted, err := s.Convert(target, ctx)
	if err != nil {
		return "", err
	}
	return converted.String(), nil
}
