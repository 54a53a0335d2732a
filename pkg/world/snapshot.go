package world

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// SnapshotHeader is written as a JSON line ahead of the gob body so a
// snapshot can be identified without decoding it.
type SnapshotHeader struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`
	Blocks  int   `json:"blocks"`
}

type snapshotBlock struct {
	X, Y, Z int32
	State   uint16
}

type snapshotV1 struct {
	Header SnapshotHeader
	Blocks []snapshotBlock
}

// SaveSnapshot writes the seed and every modified block to w, zstd compressed.
func (w *World) SaveSnapshot(out io.Writer) error {
	mods := w.Modifications()
	snap := snapshotV1{
		Header: SnapshotHeader{Version: SnapshotVersion, Seed: w.Gen.Seed, Blocks: len(mods)},
		Blocks: make([]snapshotBlock, 0, len(mods)),
	}
	for pos, s := range mods {
		snap.Blocks = append(snap.Blocks, snapshotBlock{pos.X, pos.Y, pos.Z, uint16(s)})
	}

	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		enc.Close()
		return err
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// LoadSnapshot reads a snapshot written by SaveSnapshot and returns a world
// with the same seed and modifications.
func LoadSnapshot(in io.Reader) (*World, error) {
	dec, err := zstd.NewReader(in)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var header SnapshotHeader
	if err := json.Unmarshal(line, &header); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	if header.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", header.Version)
	}

	var snap snapshotV1
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}

	w := NewWorld(snap.Header.Seed)
	for _, b := range snap.Blocks {
		w.SetBlock(b.X, b.Y, b.Z, BlockState(b.State))
	}
	return w, nil
}

// WriteSnapshotFile saves the world to path, replacing any previous snapshot.
func (w *World) WriteSnapshotFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := w.SaveSnapshot(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// ReadSnapshotFile loads a world from a snapshot file.
func ReadSnapshotFile(path string) (*World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSnapshot(f)
}
