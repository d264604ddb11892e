package contracts

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Num is an optional float64.
// ⭐ SSOT: missing values are represented by Valid=false, never by NaN
type Num struct {
	Value float64
	Valid bool
}

// Some returns a defined Num
func Some(v float64) Num {
	return Num{Value: v, Valid: true}
}

// None returns an undefined Num
func None() Num {
	return Num{}
}

// NumFromFloat converts a float64, mapping NaN and ±Inf to None
func NumFromFloat(v float64) Num {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return None()
	}
	return Some(v)
}

// NumFromPtr converts a nullable database column
func NumFromPtr(v *float64) Num {
	if v == nil {
		return None()
	}
	return NumFromFloat(*v)
}

// CoerceNum converts a loosely typed column value into a Num.
// Unparseable values are treated as missing.
func CoerceNum(v any) Num {
	switch val := v.(type) {
	case nil:
		return None()
	case Num:
		return val
	case float64:
		return NumFromFloat(val)
	case float32:
		return NumFromFloat(float64(val))
	case int:
		return Some(float64(val))
	case int32:
		return Some(float64(val))
	case int64:
		return Some(float64(val))
	case *float64:
		return NumFromPtr(val)
	case []byte:
		return parseNum(string(val))
	case string:
		return parseNum(val)
	default:
		return None()
	}
}

func parseNum(s string) Num {
	s = strings.TrimSpace(s)
	if s == "" {
		return None()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return None()
	}
	return NumFromFloat(f)
}

// Or returns the value, or def when undefined
func (n Num) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// Ptr returns a pointer suitable for a nullable SQL parameter
func (n Num) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// MarshalJSON encodes undefined values as null
func (n Num) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON decodes null as undefined
func (n *Num) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = NumFromFloat(v)
	return nil
}
