package repositories

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cbodonnell/scoreboard/pkg/match"
	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// EncodeRecord serializes a match document and compresses it for storage.
func EncodeRecord(doc *match.Document) ([]byte, error) {
	b, err := doc.Marshal()
	if err != nil {
		return nil, err
	}

	compressed := bytes.NewBuffer(nil)
	compWriter, err := zstd.NewWriter(compressed, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %v", err)
	}
	if _, err := compWriter.Write(b); err != nil {
		return nil, fmt.Errorf("failed to compress match %s: %v", doc.ID, err)
	}
	if err := compWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zstd writer: %v", err)
	}

	return compressed.Bytes(), nil
}

// DecodeRecord reverses EncodeRecord. Records written before compression was
// introduced are plain JSON and are parsed as is.
func DecodeRecord(data []byte) (*match.Document, error) {
	if !bytes.HasPrefix(data, zstdMagic) {
		return match.Parse(data)
	}

	compReader, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %v", err)
	}
	defer compReader.Close()

	b, err := io.ReadAll(compReader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress match record: %v", err)
	}

	return match.Parse(b)
}
