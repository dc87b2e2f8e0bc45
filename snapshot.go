package soa

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"reflect"
	"unsafe"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/soa/internal/conv"
	"github.com/hupe1980/soa/schema"
)

// WriteTo writes a columnar snapshot: the file header, one section per
// field run in declaration order (each prefixed with its byte length),
// and a trailing CRC32 over all section bytes.
//
// Pointer-free field types are stored as the run's raw bytes; string
// fields as length-prefixed UTF-8. Any other pointer-bearing field type
// fails with ErrUnsupportedFieldType. Sections are encoded concurrently
// and written in field order. Compression follows the WithCompression
// option the vector was built with.
func (v *Vector[T]) WriteTo(w io.Writer) (int64, error) {
	h := &v.h

	arity, err := conv.IntToUint32(h.schema.Arity())
	if err != nil {
		return 0, err
	}
	length, err := conv.IntToUint64(h.length)
	if err != nil {
		return 0, err
	}

	hdr := FileHeader{
		Magic:      FormatMagic,
		Version:    FormatVersion,
		Flags:      uint32(h.compression) & compressionMask,
		Arity:      arity,
		Length:     length,
		SchemaHash: h.schema.Hash(),
		DataOffset: HeaderSize,
	}

	var written int64
	n, err := hdr.WriteTo(w)
	written += n
	if err != nil {
		return written, err
	}

	// Encode all sections up front, in parallel. Runs are only read here;
	// the caller owns the vector and must not mutate it concurrently.
	fields := h.schema.Fields()
	sections := make([][]byte, len(fields))
	var g errgroup.Group
	for i := range fields {
		g.Go(func() error {
			raw, err := encodeSection(h, i)
			if err != nil {
				return err
			}
			if h.compression != CompressionNone {
				raw, err = compressBlock(raw, h.compression)
				if err != nil {
					return err
				}
			}
			sections[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.logger.LogSnapshot(h.schema.Type().String(), written, err)
		return written, err
	}

	crc := crc32.NewIEEE()
	mw := io.MultiWriter(w, crc)

	var prefix [8]byte
	for _, section := range sections {
		sectionLen, err := conv.IntToUint64(len(section))
		if err != nil {
			return written, err
		}
		binary.LittleEndian.PutUint64(prefix[:], sectionLen)
		n, err := mw.Write(prefix[:])
		written += int64(n)
		if err != nil {
			return written, err
		}
		n, err = mw.Write(section)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}

	var checksum [4]byte
	binary.LittleEndian.PutUint32(checksum[:], crc.Sum32())
	n2, err := w.Write(checksum[:])
	written += int64(n2)

	h.logger.LogSnapshot(h.schema.Type().String(), written, err)
	return written, err
}

// ReadFrom replaces the vector's contents with a snapshot previously
// written by WriteTo. The snapshot must have been written for the same
// record shape (guarded by the schema fingerprint in the header).
//
// Decoding happens into a fresh block; the vector is only modified after
// the trailing checksum verifies, so a failed read leaves it unchanged.
func (v *Vector[T]) ReadFrom(r io.Reader) (int64, error) {
	h := &v.h

	var read int64
	var hdr FileHeader
	n, err := hdr.ReadFrom(r)
	read += n
	if err != nil {
		return read, err
	}

	if hdr.SchemaHash != h.schema.Hash() || int(hdr.Arity) != h.schema.Arity() {
		return read, fmt.Errorf("%w: snapshot written for a different record shape", ErrSchemaMismatch)
	}

	length, err := conv.Uint64ToInt(hdr.Length)
	if err != nil {
		return read, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}

	next := allocBlock(h.schema, length)

	crc := crc32.NewIEEE()
	tr := io.TeeReader(r, crc)

	fields := h.schema.Fields()
	var prefix [8]byte
	for i := range fields {
		n, err := io.ReadFull(tr, prefix[:])
		read += int64(n)
		if err != nil {
			return read, err
		}
		sectionLen, err := conv.Uint64ToInt(binary.LittleEndian.Uint64(prefix[:]))
		if err != nil {
			return read, fmt.Errorf("%w: %v", ErrCorrupted, err)
		}

		section := make([]byte, sectionLen)
		n, err = io.ReadFull(tr, section)
		read += int64(n)
		if err != nil {
			return read, err
		}

		if c := hdr.Compression(); c != CompressionNone {
			section, err = decompressBlock(section, c)
			if err != nil {
				return read, err
			}
		}
		if err := decodeSection(&fields[i], next, length, section); err != nil {
			return read, err
		}
	}

	var checksum [4]byte
	n2, err := io.ReadFull(r, checksum[:])
	read += int64(n2)
	if err != nil {
		return read, err
	}
	if binary.LittleEndian.Uint32(checksum[:]) != crc.Sum32() {
		return read, fmt.Errorf("%w: section checksum mismatch", ErrCorrupted)
	}

	h.block = next
	h.length = length

	h.logger.LogSnapshot(h.schema.Type().String(), read, nil)
	return read, nil
}

// encodeSection produces the raw (pre-compression) section bytes for one
// field run.
func encodeSection(h *header, field int) ([]byte, error) {
	f := h.schema.Field(field)
	n := h.length

	switch {
	case !f.HasPointers():
		if n == 0 {
			return nil, nil
		}
		return unsafe.Slice((*byte)(h.block.runs[field]), uintptr(n)*f.Size), nil

	case f.Type.Kind() == reflect.String:
		var buf []byte
		var lenBuf [4]byte
		for i := 0; i < n; i++ {
			s := *(*string)(h.slot(field, i))
			strLen, err := conv.IntToUint32(len(s))
			if err != nil {
				return nil, err
			}
			binary.LittleEndian.PutUint32(lenBuf[:], strLen)
			buf = append(buf, lenBuf[:]...)
			buf = append(buf, s...)
		}
		return buf, nil

	default:
		return nil, fmt.Errorf("%w: field %q of type %s", ErrUnsupportedFieldType, f.Name, f.Type)
	}
}

// decodeSection fills one field run of a freshly allocated block from raw
// section bytes.
func decodeSection(f *schema.Field, b block, n int, section []byte) error {
	switch {
	case !f.HasPointers():
		expected := uintptr(n) * f.Size
		if uintptr(len(section)) != expected {
			return fmt.Errorf("%w: field %q section is %d bytes, want %d",
				ErrCorrupted, f.Name, len(section), expected)
		}
		if n == 0 {
			return nil
		}
		copy(unsafe.Slice((*byte)(b.runs[f.Index]), expected), section)
		return nil

	case f.Type.Kind() == reflect.String:
		off := 0
		for i := 0; i < n; i++ {
			if off+4 > len(section) {
				return fmt.Errorf("%w: field %q section truncated", ErrCorrupted, f.Name)
			}
			strLen := int(binary.LittleEndian.Uint32(section[off:]))
			off += 4
			if off+strLen > len(section) {
				return fmt.Errorf("%w: field %q section truncated", ErrCorrupted, f.Name)
			}
			slot := unsafe.Add(b.runs[f.Index], uintptr(i)*f.Size)
			*(*string)(slot) = string(section[off : off+strLen])
			off += strLen
		}
		if off != len(section) {
			return fmt.Errorf("%w: field %q section has %d trailing bytes",
				ErrCorrupted, f.Name, len(section)-off)
		}
		return nil

	default:
		return fmt.Errorf("%w: field %q of type %s", ErrUnsupportedFieldType, f.Name, f.Type)
	}
}
