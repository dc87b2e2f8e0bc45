package soa

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

const (
	// FormatMagic identifies snapshot files (ASCII: "SOA0").
	FormatMagic = 0x534F4130

	// FormatVersion is the current snapshot format version.
	FormatVersion uint32 = 1

	// HeaderSize is the size of the file header in bytes.
	HeaderSize = 64

	// compressionMask selects the CompressionType bits of the flags word.
	compressionMask uint32 = 0x3
)

var (
	// ErrInvalidMagic is returned when a file has an invalid magic number.
	ErrInvalidMagic = errors.New("soa: invalid magic number")

	// ErrInvalidVersion is returned when a file has an unsupported version.
	ErrInvalidVersion = errors.New("soa: unsupported format version")

	// ErrCorrupted is returned when a file fails checksum or structural
	// validation.
	ErrCorrupted = errors.New("soa: file corrupted")

	// ErrSchemaMismatch is returned when a snapshot was written for a
	// differently shaped record type.
	ErrSchemaMismatch = errors.New("soa: snapshot schema mismatch")

	// ErrUnsupportedFieldType is returned when a field type has no
	// snapshot encoding (pointer-bearing types other than string).
	ErrUnsupportedFieldType = errors.New("soa: field type not serializable")
)

// FileHeader is the 64-byte header at the start of snapshot files.
//
// All multi-byte fields are little-endian.
type FileHeader struct {
	Magic      uint32 // 0x534F4130 ("SOA0")
	Version    uint32 // Format version (currently 1)
	Flags      uint32 // Compression type in the low bits
	Arity      uint32 // Number of field sections
	Length     uint64 // Number of records
	SchemaHash uint64 // Fingerprint of the record shape
	DataOffset uint64 // Offset to the first field section
	Checksum   uint32 // CRC32 of the first 56 header bytes
}

// Compression returns the compression type encoded in the flags.
func (h *FileHeader) Compression() CompressionType {
	return CompressionType(h.Flags & compressionMask)
}

// Validate checks magic and version.
func (h *FileHeader) Validate() error {
	if h.Magic != FormatMagic {
		return ErrInvalidMagic
	}
	if h.Version > FormatVersion {
		return ErrInvalidVersion
	}
	return nil
}

// WriteTo writes the header to w, computing the header checksum.
func (h *FileHeader) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.Flags)
	binary.LittleEndian.PutUint32(buf[12:16], h.Arity)
	binary.LittleEndian.PutUint64(buf[16:24], h.Length)
	binary.LittleEndian.PutUint64(buf[24:32], h.SchemaHash)
	binary.LittleEndian.PutUint64(buf[32:40], h.DataOffset)

	h.Checksum = crc32.ChecksumIEEE(buf[:56])
	binary.LittleEndian.PutUint32(buf[56:60], h.Checksum)

	n, err := w.Write(buf)
	return int64(n), err
}

// ReadFrom reads and validates the header from r.
func (h *FileHeader) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return int64(n), err
	}

	h.Magic = binary.LittleEndian.Uint32(buf[0:4])
	h.Version = binary.LittleEndian.Uint32(buf[4:8])
	h.Flags = binary.LittleEndian.Uint32(buf[8:12])
	h.Arity = binary.LittleEndian.Uint32(buf[12:16])
	h.Length = binary.LittleEndian.Uint64(buf[16:24])
	h.SchemaHash = binary.LittleEndian.Uint64(buf[24:32])
	h.DataOffset = binary.LittleEndian.Uint64(buf[32:40])
	h.Checksum = binary.LittleEndian.Uint32(buf[56:60])

	if err := h.Validate(); err != nil {
		return int64(n), err
	}
	if crc32.ChecksumIEEE(buf[:56]) != h.Checksum {
		return int64(n), ErrCorrupted
	}
	return int64(n), nil
}
