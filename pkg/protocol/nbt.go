package protocol

import (
	"fmt"
	"io"
)

// NBT tag types as they appear on the wire.
const (
	tagEnd byte = iota
	tagByte
	tagShort
	tagInt
	tagLong
	tagFloat
	tagDouble
	tagByteArray
	tagString
	tagList
	tagCompound
	tagIntArray
)

// skipNBT consumes an optional root compound. A lone TAG_End means none.
// Creative clients attach NBT to items, which the server never keeps.
func skipNBT(r io.Reader) error {
	t, err := ReadByte(r)
	if err != nil || t == tagEnd {
		return err
	}
	if t != tagCompound {
		return fmt.Errorf("unexpected root NBT tag %d", t)
	}
	if err := skipNBTString(r); err != nil {
		return err
	}
	return skipNBTPayload(r, tagCompound, 0)
}

func skipNBTString(r io.Reader) error {
	n, err := ReadUint16(r)
	if err != nil {
		return err
	}
	return skipBytes(r, int64(n))
}

func skipBytes(r io.Reader, n int64) error {
	_, err := io.CopyN(io.Discard, r, n)
	return err
}

func skipNBTPayload(r io.Reader, t byte, depth int) error {
	if depth > 64 {
		return fmt.Errorf("NBT nested too deeply")
	}
	switch t {
	case tagByte:
		return skipBytes(r, 1)
	case tagShort:
		return skipBytes(r, 2)
	case tagInt, tagFloat:
		return skipBytes(r, 4)
	case tagLong, tagDouble:
		return skipBytes(r, 8)
	case tagString:
		return skipNBTString(r)
	case tagByteArray, tagIntArray:
		n, err := ReadInt32(r)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("negative NBT array length %d", n)
		}
		size := int64(n)
		if t == tagIntArray {
			size *= 4
		}
		return skipBytes(r, size)
	case tagList:
		elem, err := ReadByte(r)
		if err != nil {
			return err
		}
		n, err := ReadInt32(r)
		if err != nil {
			return err
		}
		for i := int32(0); i < n; i++ {
			if err := skipNBTPayload(r, elem, depth+1); err != nil {
				return err
			}
		}
		return nil
	case tagCompound:
		for {
			child, err := ReadByte(r)
			if err != nil {
				return err
			}
			if child == tagEnd {
				return nil
			}
			if err := skipNBTString(r); err != nil {
				return err
			}
			if err := skipNBTPayload(r, child, depth+1); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("unknown NBT tag %d", t)
}
