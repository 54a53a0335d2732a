package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"
)

var errVarIntTooBig = errors.New("VarInt is too big")

// ReadVarInt reads a variable-length integer and returns it with the number
// of bytes consumed. VarInts are at most 5 bytes.
func ReadVarInt(r io.Reader) (int32, int, error) {
	v, n, err := readVar(r, 5)
	return int32(v), n, err
}

// ReadVarLong reads a variable-length long of at most 10 bytes.
func ReadVarLong(r io.Reader) (int64, int, error) {
	v, n, err := readVar(r, 10)
	return int64(v), n, err
}

func readVar(r io.Reader, maxBytes int) (uint64, int, error) {
	var result uint64
	var b [1]byte
	for n := 0; ; n++ {
		if n == maxBytes {
			return 0, n, errVarIntTooBig
		}
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, n, err
		}
		result |= uint64(b[0]&0x7F) << (7 * n)
		if b[0]&0x80 == 0 {
			return result, n + 1, nil
		}
	}
}

// PutVarInt encodes value into buf and returns the number of bytes used.
func PutVarInt(buf []byte, value int32) int {
	return putVar(buf, uint64(uint32(value)))
}

func putVar(buf []byte, v uint64) int {
	n := 0
	for v >= 0x80 {
		buf[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	buf[n] = byte(v)
	return n + 1
}

// WriteVarInt writes a variable-length integer.
func WriteVarInt(w io.Writer, value int32) (int, error) {
	var buf [5]byte
	return w.Write(buf[:PutVarInt(buf[:], value)])
}

// WriteVarLong writes a variable-length long.
func WriteVarLong(w io.Writer, value int64) (int, error) {
	var buf [10]byte
	return w.Write(buf[:putVar(buf[:], uint64(value))])
}

// VarIntSize returns the encoded length of value.
func VarIntSize(value int32) int {
	var buf [5]byte
	return PutVarInt(buf[:], value)
}

// ReadString reads a length-prefixed UTF-8 string.
func ReadString(r io.Reader) (string, error) {
	length, _, err := ReadVarInt(r)
	if err != nil {
		return "", err
	}
	if length < 0 || length > 32767*4 {
		return "", fmt.Errorf("string length out of range: %d", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteString writes a length-prefixed UTF-8 string.
func WriteString(w io.Writer, s string) error {
	if _, err := WriteVarInt(w, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readFixed(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}

// ReadByte reads a single byte.
func ReadByte(r io.Reader) (byte, error) {
	var b [1]byte
	err := readFixed(r, b[:])
	return b[0], err
}

// WriteByte writes a single byte.
func WriteByte(w io.Writer, v byte) error {
	_, err := w.Write([]byte{v})
	return err
}

// ReadBool reads a boolean.
func ReadBool(r io.Reader) (bool, error) {
	b, err := ReadByte(r)
	return b != 0, err
}

// WriteBool writes a boolean.
func WriteBool(w io.Writer, v bool) error {
	if v {
		return WriteByte(w, 1)
	}
	return WriteByte(w, 0)
}

// ReadUint16 reads a big-endian unsigned short.
func ReadUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	err := readFixed(r, b[:])
	return binary.BigEndian.Uint16(b[:]), err
}

// WriteUint16 writes a big-endian unsigned short.
func WriteUint16(w io.Writer, v uint16) error {
	_, err := w.Write(binary.BigEndian.AppendUint16(nil, v))
	return err
}

// ReadInt16 reads a big-endian short.
func ReadInt16(r io.Reader) (int16, error) {
	v, err := ReadUint16(r)
	return int16(v), err
}

// WriteInt16 writes a big-endian short.
func WriteInt16(w io.Writer, v int16) error {
	return WriteUint16(w, uint16(v))
}

// ReadInt32 reads a big-endian int.
func ReadInt32(r io.Reader) (int32, error) {
	var b [4]byte
	err := readFixed(r, b[:])
	return int32(binary.BigEndian.Uint32(b[:])), err
}

// WriteInt32 writes a big-endian int.
func WriteInt32(w io.Writer, v int32) error {
	_, err := w.Write(binary.BigEndian.AppendUint32(nil, uint32(v)))
	return err
}

// ReadInt64 reads a big-endian long.
func ReadInt64(r io.Reader) (int64, error) {
	var b [8]byte
	err := readFixed(r, b[:])
	return int64(binary.BigEndian.Uint64(b[:])), err
}

// WriteInt64 writes a big-endian long.
func WriteInt64(w io.Writer, v int64) error {
	_, err := w.Write(binary.BigEndian.AppendUint64(nil, uint64(v)))
	return err
}

// ReadFloat32 reads a big-endian float.
func ReadFloat32(r io.Reader) (float32, error) {
	v, err := ReadInt32(r)
	return math.Float32frombits(uint32(v)), err
}

// WriteFloat32 writes a big-endian float.
func WriteFloat32(w io.Writer, v float32) error {
	return WriteInt32(w, int32(math.Float32bits(v)))
}

// ReadFloat64 reads a big-endian double.
func ReadFloat64(r io.Reader) (float64, error) {
	v, err := ReadInt64(r)
	return math.Float64frombits(uint64(v)), err
}

// WriteFloat64 writes a big-endian double.
func WriteFloat64(w io.Writer, v float64) error {
	return WriteInt64(w, int64(math.Float64bits(v)))
}

// ReadUUID reads a UUID sent as 16 raw bytes.
func ReadUUID(r io.Reader) (uuid.UUID, error) {
	var id uuid.UUID
	err := readFixed(r, id[:])
	return id, err
}

// WriteUUID writes a UUID as 16 raw bytes.
func WriteUUID(w io.Writer, id uuid.UUID) error {
	_, err := w.Write(id[:])
	return err
}

// ReadPosition reads a block position packed into a long: 26 bits X,
// 12 bits Y, 26 bits Z.
func ReadPosition(r io.Reader) (x, y, z int32, err error) {
	val, err := ReadInt64(r)
	if err != nil {
		return 0, 0, 0, err
	}
	x = int32(val >> 38)
	y = int32((val >> 26) & 0xFFF)
	z = int32(val << 38 >> 38)
	return x, y, z, nil
}

// WritePosition writes a packed block position.
func WritePosition(w io.Writer, x, y, z int32) error {
	val := (int64(x&0x3FFFFFF) << 38) | (int64(y&0xFFF) << 26) | int64(z&0x3FFFFFF)
	return WriteInt64(w, val)
}

// ReadSlotData reads an inventory slot. Empty slots come back with itemID -1.
// Any NBT payload is skipped.
func ReadSlotData(r io.Reader) (itemID int16, count byte, damage int16, err error) {
	if itemID, err = ReadInt16(r); err != nil || itemID == -1 {
		return itemID, 0, 0, err
	}
	if count, err = ReadByte(r); err != nil {
		return
	}
	if damage, err = ReadInt16(r); err != nil {
		return
	}
	err = skipNBT(r)
	return
}

// WriteSlotData writes an inventory slot without NBT. Pass itemID -1 for an
// empty slot.
func WriteSlotData(w io.Writer, itemID int16, count byte, damage int16) error {
	if err := WriteInt16(w, itemID); err != nil {
		return err
	}
	if itemID == -1 {
		return nil
	}
	if err := WriteByte(w, count); err != nil {
		return err
	}
	if err := WriteInt16(w, damage); err != nil {
		return err
	}
	return WriteByte(w, 0) // TAG_End: no NBT
}
