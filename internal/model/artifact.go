package model

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"predictord/internal/common/fsutil"
)

// Native artifact layout:
//
//	[8]byte  magic "PRDMODEL"
//	uint16   format version (little endian)
//	...      zstd frame holding the JSON Spec
const (
	artifactMagic   = "PRDMODEL"
	artifactVersion = uint16(1)
)

var (
	errBadMagic   = errors.New("not a predictord artifact (bad magic)")
	errBadVersion = errors.New("unsupported artifact version")
)

// WriteArtifact validates s and writes it as a native artifact.
func WriteArtifact(w io.Writer, s *Spec) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid spec: %w", err)
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	body := enc.EncodeAll(payload, make([]byte, 0, len(payload)/2))
	_ = enc.Close()

	var hdr [10]byte
	copy(hdr[:8], artifactMagic)
	binary.LittleEndian.PutUint16(hdr[8:], artifactVersion)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// SaveArtifact writes s to path atomically.
func SaveArtifact(path string, s *Spec) error {
	var buf bytes.Buffer
	if err := WriteArtifact(&buf, s); err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}

// ReadArtifact parses and validates a native artifact.
func ReadArtifact(r io.Reader) (*Spec, error) {
	var hdr [10]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errBadMagic
		}
		return nil, err
	}
	if string(hdr[:8]) != artifactMagic {
		return nil, errBadMagic
	}
	if v := binary.LittleEndian.Uint16(hdr[8:]); v != artifactVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", errBadVersion, v, artifactVersion)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	payload, err := dec.DecodeAll(body, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress manifest: %w", err)
	}
	var s Spec
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &s, nil
}
