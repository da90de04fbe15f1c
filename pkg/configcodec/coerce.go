package configcodec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var errEmptyBuffer = errors.New("empty buffer")

func coerceBool(field string, value interface{}) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, badType(field, fmt.Sprintf("expected bool, got %T", value))
	}
	return b, nil
}

func coerceMap(field string, value interface{}) (map[string]interface{}, error) {
	m, ok := value.(map[string]interface{})
	if !ok {
		return nil, badType(field, fmt.Sprintf("expected mapping, got %T", value))
	}
	return m, nil
}

// coerceUint32 accepts the integer types a caller plausibly holds,
// plus the float64 and json.Number forms produced by encoding/json.
// Negative values and non-integral floats are rejected.
func coerceUint32(field string, value interface{}) (uint32, error) {
	switch v := value.(type) {
	case uint32:
		return v, nil
	case int:
		if v < 0 || int64(v) > math.MaxUint32 {
			return 0, badType(field, fmt.Sprintf("value %d out of range", v))
		}
		return uint32(v), nil
	case int32:
		if v < 0 {
			return 0, badType(field, fmt.Sprintf("value %d out of range", v))
		}
		return uint32(v), nil
	case int64:
		if v < 0 || v > math.MaxUint32 {
			return 0, badType(field, fmt.Sprintf("value %d out of range", v))
		}
		return uint32(v), nil
	case uint64:
		if v > math.MaxUint32 {
			return 0, badType(field, fmt.Sprintf("value %d out of range", v))
		}
		return uint32(v), nil
	case uint:
		if uint64(v) > math.MaxUint32 {
			return 0, badType(field, fmt.Sprintf("value %d out of range", v))
		}
		return uint32(v), nil
	case float64:
		if v != math.Trunc(v) || v < 0 || v > math.MaxUint32 {
			return 0, badType(field, fmt.Sprintf("value %v is not a non-negative integer", v))
		}
		return uint32(v), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil || i < 0 || i > math.MaxUint32 {
			return 0, badType(field, fmt.Sprintf("value %q is not a non-negative integer", v.String()))
		}
		return uint32(i), nil
	default:
		return 0, badType(field, fmt.Sprintf("expected unsigned integer, got %T", value))
	}
}

// coerceEnum accepts an enum value either by its symbolic name or by
// number.
func coerceEnum(field string, value interface{}, names map[string]int32) (int32, error) {
	if s, ok := value.(string); ok {
		n, ok := names[s]
		if !ok {
			return 0, badType(field, fmt.Sprintf("unknown enum value %q", s))
		}
		return n, nil
	}
	u, err := coerceUint32(field, value)
	if err != nil {
		return 0, err
	}
	for _, n := range names {
		if n == int32(u) {
			return int32(u), nil
		}
	}
	return 0, badType(field, fmt.Sprintf("enum value %d out of range", u))
}
