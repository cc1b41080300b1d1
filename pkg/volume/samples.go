package volume

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// DType is the storage type of one sample.
type DType int

const (
	Uint8 DType = iota + 1
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Float32
	Float64
)

var dtypeNames = map[DType]string{
	Uint8:   "uint8",
	Int8:    "int8",
	Uint16:  "uint16",
	Int16:   "int16",
	Uint32:  "uint32",
	Int32:   "int32",
	Float32: "float32",
	Float64: "float64",
}

func (d DType) String() string {
	if s, ok := dtypeNames[d]; ok {
		return s
	}
	return fmt.Sprintf("DType(%d)", int(d))
}

// ParseDType is the inverse of DType.String.
func ParseDType(s string) (DType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, name := range dtypeNames {
		if name == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnsupportedDatatype)
}

// Size returns the number of bytes per sample.
func (d DType) Size() int {
	switch d {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32, Float32:
		return 4
	case Float64:
		return 8
	}
	return 0
}

// scaling is the linear intensity map label = slope*sample + inter.
type scaling struct {
	slope, inter float64
}

func (s scaling) identity() bool {
	return s.slope == 0 || (s.slope == 1 && s.inter == 0)
}

// decodeLabels converts packed samples into integer labels, rounding
// floating-point values to the nearest integer.
func decodeLabels(buf []byte, dt DType, order binary.ByteOrder, sc scaling) ([]int32, error) {
	size := dt.Size()
	if size == 0 {
		return nil, fmt.Errorf("%s: %w", dt, ErrUnsupportedDatatype)
	}
	if len(buf)%size != 0 {
		return nil, fmt.Errorf("%d bytes is not a whole number of %s samples: %w", len(buf), dt, ErrShapeMismatch)
	}

	n := len(buf) / size
	labels := make([]int32, n)
	for i := 0; i < n; i++ {
		b := buf[i*size : (i+1)*size]
		var v float64
		switch dt {
		case Uint8:
			v = float64(b[0])
		case Int8:
			v = float64(int8(b[0]))
		case Uint16:
			v = float64(order.Uint16(b))
		case Int16:
			v = float64(int16(order.Uint16(b)))
		case Uint32:
			v = float64(order.Uint32(b))
		case Int32:
			v = float64(int32(order.Uint32(b)))
		case Float32:
			v = float64(math.Float32frombits(order.Uint32(b)))
		case Float64:
			v = math.Float64frombits(order.Uint64(b))
		}
		if !sc.identity() {
			v = sc.slope*v + sc.inter
		}
		if math.IsNaN(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return nil, fmt.Errorf("sample %d (%v) is not a valid label: %w", i, v, ErrUnsupportedDatatype)
		}
		labels[i] = int32(math.Round(v))
	}
	return labels, nil
}
