package player

import (
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

type ValueKind string

const (
	KindString ValueKind = "string"
	KindNumber ValueKind = "number"
	KindBool   ValueKind = "bool"
)

const floatTolerance = 1e-6

// Value is one scalar profile field. Integers are carried as numbers.
type Value struct {
	Kind   ValueKind
	Text   string
	Number float64
	Flag   bool
}

func StringValue(s string) Value { return Value{Kind: KindString, Text: strings.TrimSpace(s)} }

func NumberValue(f float64) Value { return Value{Kind: KindNumber, Number: f} }

func IntValue(n int) Value { return Value{Kind: KindNumber, Number: float64(n)} }

func BoolValue(b bool) Value { return Value{Kind: KindBool, Flag: b} }

// IsZero reports whether the value carries nothing worth keeping.
func (v Value) IsZero() bool {
	switch v.Kind {
	case KindString:
		return strings.TrimSpace(v.Text) == ""
	case KindNumber, KindBool:
		return false
	default:
		return true
	}
}

// Equal compares after normalization: strings case-insensitive and trimmed, numbers
// within a small relative/absolute tolerance, and numeric strings against numbers.
func (v Value) Equal(other Value) bool {
	if v.Kind == other.Kind {
		switch v.Kind {
		case KindString:
			return strings.EqualFold(strings.TrimSpace(v.Text), strings.TrimSpace(other.Text))
		case KindNumber:
			return numbersEqual(v.Number, other.Number)
		case KindBool:
			return v.Flag == other.Flag
		default:
			return true
		}
	}

	a, okA := v.asNumber()
	b, okB := other.asNumber()
	if okA && okB {
		return numbersEqual(a, b)
	}
	return strings.EqualFold(v.String(), other.String())
}

func (v Value) asNumber() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Number, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func numbersEqual(a, b float64) bool {
	diff := math.Abs(a - b)
	if diff <= floatTolerance {
		return true
	}
	return diff <= floatTolerance*math.Max(math.Abs(a), math.Abs(b))
}

func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Text
	case KindNumber:
		if v.Number == math.Trunc(v.Number) && math.Abs(v.Number) < 1e15 {
			return strconv.FormatInt(int64(v.Number), 10)
		}
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Flag)
	default:
		return ""
	}
}

// Native returns the Go value for encoders that do not know Value.
func (v Value) Native() any {
	switch v.Kind {
	case KindString:
		return v.Text
	case KindNumber:
		if v.Number == math.Trunc(v.Number) && math.Abs(v.Number) < 1e15 {
			return int64(v.Number)
		}
		return v.Number
	case KindBool:
		return v.Flag
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(v.Native())
}
