package imagepkg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"math"

	"github.com/youruser/cardinserts/internal/util"
)

// Artifact is a persisted insert.
type Artifact struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
	Path  string `json:"path"`
}

// ArtifactWriteError reports a failed write of an insert or document.
type ArtifactWriteError struct {
	Path string
	Err  error
}

func (e *ArtifactWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *ArtifactWriteError) Unwrap() error { return e.Err }

// Store writes inserts as <label>.png under Dir.
type Store struct {
	Dir string
	DPI float64
}

// Save encodes ins losslessly with DPI metadata. The file appears complete
// or not at all.
func (s Store) Save(ins *Insert) (Artifact, error) {
	path := util.JoinKey(s.Dir, ins.Label, ".png")
	b, err := EncodePNG(ins.Image, s.DPI)
	if err != nil {
		return Artifact{}, &ArtifactWriteError{Path: path, Err: err}
	}
	if err := util.WriteFileAtomic(path, b, 0o644); err != nil {
		return Artifact{}, &ArtifactWriteError{Path: path, Err: err}
	}
	return Artifact{Index: ins.Index, Key: ins.Label, Path: path}, nil
}

// EncodePNG encodes img as PNG with a pHYs chunk declaring dpi.
func EncodePNG(img image.Image, dpi float64) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	if dpi <= 0 {
		return buf.Bytes(), nil
	}
	return insertPHYs(buf.Bytes(), dpi)
}

const pngHeaderLen = 8

// insertPHYs places a pHYs chunk right after IHDR; PNG requires it before
// the first IDAT.
func insertPHYs(data []byte, dpi float64) ([]byte, error) {
	if len(data) < pngHeaderLen+8 {
		return nil, errors.New("png too short")
	}
	ihdrLen := int(binary.BigEndian.Uint32(data[pngHeaderLen:]))
	if string(data[pngHeaderLen+4:pngHeaderLen+8]) != "IHDR" {
		return nil, errors.New("png: IHDR is not the first chunk")
	}
	end := pngHeaderLen + 12 + ihdrLen

	ppm := uint32(math.Round(dpi / 0.0254))
	chunk := make([]byte, 21)
	binary.BigEndian.PutUint32(chunk[0:], 9)
	copy(chunk[4:], "pHYs")
	binary.BigEndian.PutUint32(chunk[8:], ppm)
	binary.BigEndian.PutUint32(chunk[12:], ppm)
	chunk[16] = 1 // unit: metre
	binary.BigEndian.PutUint32(chunk[17:], crc32.ChecksumIEEE(chunk[4:17]))

	out := make([]byte, 0, len(data)+len(chunk))
	out = append(out, data[:end]...)
	out = append(out, chunk...)
	out = append(out, data[end:]...)
	return out, nil
}

// readDPI returns the horizontal resolution stored in a PNG pHYs chunk, or 0.
func readDPI(data []byte) float64 {
	off := pngHeaderLen
	for off+12 <= len(data) {
		n := int(binary.BigEndian.Uint32(data[off:]))
		typ := string(data[off+4 : off+8])
		if typ == "pHYs" && n == 9 && off+17 <= len(data) && data[off+16] == 1 {
			ppm := binary.BigEndian.Uint32(data[off+8:])
			return math.Round(float64(ppm)*0.0254*100) / 100
		}
		if typ == "IDAT" {
			return 0
		}
		off += 12 + n
	}
	return 0
}
