package volume

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"segtopo/internal/models"
)

// RawSpec describes a headerless volume: samples in row-major order with
// axis 0 slowest.
type RawSpec struct {
	Shape [3]int
	DType DType
	// BigEndian selects the byte order of multi-byte samples.
	BigEndian bool
}

// LoadRaw reads a raw volume from path.
func LoadRaw(path string, spec RawSpec) (*models.Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRaw(f, spec)
}

// ReadRaw decodes exactly shape[0]*shape[1]*shape[2] samples from r. Trailing
// data is an error.
func ReadRaw(r io.Reader, spec RawSpec) (*models.Volume, error) {
	for axis, n := range spec.Shape {
		if n <= 0 {
			return nil, fmt.Errorf("axis %d has extent %d: %w", axis, n, ErrShapeMismatch)
		}
	}
	if spec.DType.Size() == 0 {
		return nil, fmt.Errorf("%s: %w", spec.DType, ErrUnsupportedDatatype)
	}

	n := spec.Shape[0] * spec.Shape[1] * spec.Shape[2]
	buf := make([]byte, n*spec.DType.Size())
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("want %d %s samples: %w", n, spec.DType, ErrShapeMismatch)
	}
	var extra [1]byte
	if m, _ := r.Read(extra[:]); m > 0 {
		return nil, fmt.Errorf("trailing data after %d samples: %w", n, ErrShapeMismatch)
	}

	var order binary.ByteOrder = binary.LittleEndian
	if spec.BigEndian {
		order = binary.BigEndian
	}
	labels, err := decodeLabels(buf, spec.DType, order, scaling{})
	if err != nil {
		return nil, err
	}
	return &models.Volume{Labels: labels, Shape: spec.Shape}, nil
}
