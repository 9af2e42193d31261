package chunk

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/segdb/codec"
	"github.com/hupe1980/segdb/persistence"
)

// Compression selects the block compressor applied to a chunk's encoded
// payload before it is written to the blob store. Every chunk blob carries
// its compressor as a one-byte tag, so a Layer reading chunks written under
// a different Compression setting (e.g. after an operator switches the
// default) still decodes them correctly.
type Compression uint8

const (
	// CompressionZSTD favors compression ratio over speed; the default for
	// cold, append-ordered column data.
	CompressionZSTD Compression = iota
	// CompressionLZ4 favors speed over ratio, for workloads that flush
	// often and would rather pay less CPU per chunk.
	CompressionLZ4
)

// wireEnvelope is the codec-level shape of a stored chunk: C slots, each
// the value set for one segment, in segment-index order, plus a CRC32 of
// the (uncompressed) slots payload for detecting storage-layer corruption
// on read. A missing segment is represented by an empty (non-nil) slice
// rather than by a shorter Slots length, so the slot-for-segment-index
// mapping never shifts.
type wireEnvelope[T any] struct {
	Slots    [][]T  `json:"slots"`
	Checksum uint32 `json:"checksum"`
}

func encode[T any](c codec.Codec, slots [][]T, compression Compression) ([]byte, error) {
	body, err := c.Marshal(slots)
	if err != nil {
		return nil, fmt.Errorf("chunk: marshal: %w", err)
	}

	payload, err := c.Marshal(wireEnvelope[T]{Slots: slots, Checksum: persistence.CalculateChecksum(body)})
	if err != nil {
		return nil, fmt.Errorf("chunk: marshal: %w", err)
	}

	compressed, err := compress(payload, compression)
	if err != nil {
		return nil, err
	}

	// Tag byte goes first so decode never needs to be told which
	// compressor produced a given blob.
	return append([]byte{byte(compression)}, compressed...), nil
}

func decode[T any](c codec.Codec, raw []byte) ([][]T, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("chunk: decode: empty payload")
	}

	payload, err := decompress(raw[1:], Compression(raw[0]))
	if err != nil {
		return nil, err
	}

	var env wireEnvelope[T]
	if err := c.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("chunk: unmarshal: %w", err)
	}

	body, err := c.Marshal(env.Slots)
	if err != nil {
		return nil, fmt.Errorf("chunk: marshal: %w", err)
	}
	if got := persistence.CalculateChecksum(body); got != env.Checksum {
		return nil, fmt.Errorf("chunk: %w", &persistence.ChecksumMismatchError{Expected: env.Checksum, Actual: got})
	}

	return env.Slots, nil
}

func compress(payload []byte, compression Compression) ([]byte, error) {
	if compression == CompressionLZ4 {
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(payload); err != nil {
			return nil, fmt.Errorf("chunk: lz4 encode: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("chunk: lz4 encode: %w", err)
		}
		return buf.Bytes(), nil
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("chunk: new zstd encoder: %w", err)
	}
	defer enc.Close()

	return enc.EncodeAll(payload, nil), nil
}

func decompress(raw []byte, compression Compression) ([]byte, error) {
	if compression == CompressionLZ4 {
		payload, err := io.ReadAll(lz4.NewReader(bytes.NewReader(raw)))
		if err != nil {
			return nil, fmt.Errorf("chunk: lz4 decode: %w", err)
		}
		return payload, nil
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("chunk: new zstd decoder: %w", err)
	}
	defer dec.Close()

	payload, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("chunk: zstd decode: %w", err)
	}
	return payload, nil
}
