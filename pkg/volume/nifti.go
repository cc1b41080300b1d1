package volume

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/gzip"

	"segtopo/internal/models"
)

// NIfTI-1 header layout (single-file "n+1" images only).
const (
	niftiHeaderSize = 348
	offDim          = 40
	offDatatype     = 70
	offPixdim       = 76
	offVoxOffset    = 108
	offSclSlope     = 112
	offSclInter     = 116
	offMagic        = 344
)

// niftiDatatypes maps NIfTI datatype codes to sample types.
var niftiDatatypes = map[int16]DType{
	2:   Uint8,
	4:   Int16,
	8:   Int32,
	16:  Float32,
	64:  Float64,
	256: Int8,
	512: Uint16,
	768: Uint32,
}

// LoadNIfTI reads a .nii or .nii.gz label map. Gzip is detected from the
// stream, not the file name.
func LoadNIfTI(path string) (*models.Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadNIfTI(f)
}

// ReadNIfTI decodes a NIfTI-1 image. The returned volume has axes (z, y, x),
// which is the on-disk order with x varying fastest.
func ReadNIfTI(r io.Reader) (*models.Volume, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer zr.Close()
		br = bufio.NewReader(zr)
	}

	hdr := make([]byte, niftiHeaderSize)
	if _, err := io.ReadFull(br, hdr); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var order binary.ByteOrder = binary.LittleEndian
	if order.Uint32(hdr) != niftiHeaderSize {
		order = binary.BigEndian
		if order.Uint32(hdr) != niftiHeaderSize {
			return nil, fmt.Errorf("header size is not %d: %w", niftiHeaderSize, ErrUnsupportedFormat)
		}
	}
	if !bytes.Equal(hdr[offMagic:offMagic+4], []byte("n+1\x00")) {
		return nil, fmt.Errorf("magic %q is not a single-file NIfTI-1 image: %w", hdr[offMagic:offMagic+3], ErrUnsupportedFormat)
	}

	var dim [8]int
	for i := range dim {
		dim[i] = int(int16(order.Uint16(hdr[offDim+2*i:])))
	}
	if dim[0] < 1 || dim[0] > 7 {
		return nil, fmt.Errorf("dimension count %d: %w", dim[0], ErrShapeMismatch)
	}
	nx, ny, nz := 1, 1, 1
	for axis, n := range []*int{&nx, &ny, &nz} {
		if axis+1 <= dim[0] {
			*n = dim[axis+1]
		}
	}
	for i := 4; i <= dim[0]; i++ {
		if dim[i] > 1 {
			return nil, fmt.Errorf("image has %d samples along dimension %d, only 3D volumes are supported: %w", dim[i], i, ErrShapeMismatch)
		}
	}
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("extents %dx%dx%d: %w", nx, ny, nz, ErrShapeMismatch)
	}

	code := int16(order.Uint16(hdr[offDatatype:]))
	dt, ok := niftiDatatypes[code]
	if !ok {
		return nil, fmt.Errorf("NIfTI datatype %d: %w", code, ErrUnsupportedDatatype)
	}

	float32At := func(off int) float64 {
		return float64(math.Float32frombits(order.Uint32(hdr[off:])))
	}
	voxOffset := int64(float32At(offVoxOffset))
	if voxOffset < niftiHeaderSize {
		voxOffset = niftiHeaderSize
	}
	if _, err := io.CopyN(io.Discard, br, voxOffset-niftiHeaderSize); err != nil {
		return nil, fmt.Errorf("failed to skip header extensions: %w", err)
	}

	buf := make([]byte, nx*ny*nz*dt.Size())
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, fmt.Errorf("failed to read %d voxels: %w", nx*ny*nz, err)
	}
	labels, err := decodeLabels(buf, dt, order, scaling{slope: float32At(offSclSlope), inter: float32At(offSclInter)})
	if err != nil {
		return nil, err
	}

	return &models.Volume{
		Labels:  labels,
		Shape:   [3]int{nz, ny, nx},
		Spacing: [3]float64{float32At(offPixdim + 12), float32At(offPixdim + 8), float32At(offPixdim + 4)},
	}, nil
}
