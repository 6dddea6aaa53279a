// Copyright (c) 2024-2026 The zecsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// MaxVarIntPayload is the maximum payload size for a variable length integer.
const MaxVarIntPayload = 9

var (
	// littleEndian is a convenience variable since binary.LittleEndian is
	// quite long.
	littleEndian = binary.LittleEndian
)

// readElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element pointed to.
func readElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *uint32:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		*e = littleEndian.Uint32(buf[:])
		return nil

	case *int64:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		*e = int64(littleEndian.Uint64(buf[:]))
		return nil

	case *uint64:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		*e = littleEndian.Uint64(buf[:])
		return nil
	}

	return fmt.Errorf("unhandled element type %T", element)
}

// writeElement writes the little endian representation of element to w.
func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case uint32:
		var buf [4]byte
		littleEndian.PutUint32(buf[:], e)
		_, err := w.Write(buf[:])
		return err

	case int64:
		var buf [8]byte
		littleEndian.PutUint64(buf[:], uint64(e))
		_, err := w.Write(buf[:])
		return err

	case uint64:
		var buf [8]byte
		littleEndian.PutUint64(buf[:], e)
		_, err := w.Write(buf[:])
		return err
	}

	return fmt.Errorf("unhandled element type %T", element)
}

// ReadVarInt reads a variable length integer from r and returns it as a
// uint64.  Non-canonical encodings, where the value could have been encoded
// using fewer bytes, are rejected since they are not valid in transaction
// serializations.
func ReadVarInt(r io.Reader) (uint64, error) {
	var discriminant [1]byte
	if _, err := io.ReadFull(r, discriminant[:]); err != nil {
		return 0, err
	}

	var rv uint64
	switch discriminant[0] {
	case 0xff:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		rv = littleEndian.Uint64(buf[:])

		// The encoding is not canonical if the value could have been
		// encoded using fewer bytes.
		if rv < 0x100000000 {
			return 0, messageError("ReadVarInt", "non-canonical varint")
		}

	case 0xfe:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		rv = uint64(littleEndian.Uint32(buf[:]))

		if rv < 0x10000 {
			return 0, messageError("ReadVarInt", "non-canonical varint")
		}

	case 0xfd:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		rv = uint64(littleEndian.Uint16(buf[:]))

		if rv < 0xfd {
			return 0, messageError("ReadVarInt", "non-canonical varint")
		}

	default:
		rv = uint64(discriminant[0])
	}

	return rv, nil
}

// WriteVarInt serializes val to w using a variable number of bytes depending
// on its value.
func WriteVarInt(w io.Writer, val uint64) error {
	if val < 0xfd {
		_, err := w.Write([]byte{uint8(val)})
		return err
	}

	if val <= math.MaxUint16 {
		var buf [3]byte
		buf[0] = 0xfd
		littleEndian.PutUint16(buf[1:], uint16(val))
		_, err := w.Write(buf[:])
		return err
	}

	if val <= math.MaxUint32 {
		var buf [5]byte
		buf[0] = 0xfe
		littleEndian.PutUint32(buf[1:], uint32(val))
		_, err := w.Write(buf[:])
		return err
	}

	var buf [9]byte
	buf[0] = 0xff
	littleEndian.PutUint64(buf[1:], val)
	_, err := w.Write(buf[:])
	return err
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	// The value is small enough to be represented by itself, so it's
	// just 1 byte.
	if val < 0xfd {
		return 1
	}

	// Discriminant 1 byte plus 2 bytes for the uint16.
	if val <= math.MaxUint16 {
		return 3
	}

	// Discriminant 1 byte plus 4 bytes for the uint32.
	if val <= math.MaxUint32 {
		return 5
	}

	// Discriminant 1 byte plus 8 bytes for the uint64.
	return 9
}

// ReadVarBytes reads a variable length byte array.  A byte array is encoded
// as a varint containing the length of the array followed by the bytes
// themselves.  An error is returned if the length is greater than the passed
// maxAllowed parameter which helps protect against memory exhaustion attacks
// and forced panics through malformed messages.  The fieldName parameter is
// only used for the error message so it provides more context in the error.
func ReadVarBytes(r io.Reader, maxAllowed uint32, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	// Prevent byte array larger than the max message size.  It would
	// be possible to cause memory exhaustion and panics without a sane
	// upper bound on this count.
	if count > uint64(maxAllowed) {
		str := fmt.Sprintf("%s is larger than the max allowed size "+
			"[count %d, max %d]", fieldName, count, maxAllowed)
		return nil, messageError("ReadVarBytes", str)
	}

	b := make([]byte, count)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteVarBytes serializes a variable length byte array to w as a varint
// containing the number of bytes, followed by the bytes themselves.
func WriteVarBytes(w io.Writer, bytes []byte) error {
	slen := uint64(len(bytes))
	if err := WriteVarInt(w, slen); err != nil {
		return err
	}

	_, err := w.Write(bytes)
	return err
}
