package protocol

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/zlib"
)

// Connection states
const (
	StateHandshaking = 0
	StateStatus      = 1
	StateLogin       = 2
	StatePlay        = 3
)

// Protocol version for Minecraft 1.8.x
const ProtocolVersion = 47

// maxPacketLength is the largest length a 3-byte VarInt can carry.
const maxPacketLength = 2097151

// Packet represents a Minecraft protocol packet with an ID and payload.
type Packet struct {
	ID   int32
	Data []byte
}

// MarshalPacket creates a Packet from a packet ID and a builder function.
func MarshalPacket(id int32, builder func(w *bytes.Buffer)) *Packet {
	var buf bytes.Buffer
	builder(&buf)
	return &Packet{
		ID:   id,
		Data: buf.Bytes(),
	}
}

func readFrame(r io.Reader) ([]byte, error) {
	length, _, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if length < 1 {
		return nil, fmt.Errorf("packet length too small: %d", length)
	}
	if length > maxPacketLength {
		return nil, fmt.Errorf("packet length too large: %d", length)
	}
	frame := make([]byte, length)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func parseBody(body []byte) (*Packet, error) {
	id, n, err := ReadVarInt(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return &Packet{ID: id, Data: body[n:]}, nil
}

// ReadPacket reads an uncompressed packet.
func ReadPacket(r io.Reader) (*Packet, error) {
	frame, err := readFrame(r)
	if err != nil {
		return nil, err
	}
	return parseBody(frame)
}

// WritePacket writes an uncompressed packet in a single write.
func WritePacket(w io.Writer, p *Packet) error {
	bodyLen := int32(VarIntSize(p.ID) + len(p.Data))
	buf := bytes.NewBuffer(make([]byte, 0, VarIntSize(bodyLen)+int(bodyLen)))
	WriteVarInt(buf, bodyLen)
	WriteVarInt(buf, p.ID)
	buf.Write(p.Data)
	_, err := w.Write(buf.Bytes())
	return err
}

// ReadPacketCompressed reads a packet framed for an active compression
// threshold: packet length, uncompressed length (0 when sent raw), body.
func ReadPacketCompressed(r io.Reader) (*Packet, error) {
	frame, err := readFrame(r)
	if err != nil {
		return nil, err
	}
	fr := bytes.NewReader(frame)
	dataLen, n, err := ReadVarInt(fr)
	if err != nil {
		return nil, err
	}
	if dataLen == 0 {
		return parseBody(frame[n:])
	}
	if dataLen < 0 || dataLen > maxPacketLength {
		return nil, fmt.Errorf("uncompressed length out of range: %d", dataLen)
	}

	zr, err := zlib.NewReader(fr)
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	defer zr.Close()
	body := make([]byte, dataLen)
	if _, err := io.ReadFull(zr, body); err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	return parseBody(body)
}

// WritePacketCompressed writes a packet framed for compression, deflating
// the body when it is at least threshold bytes long.
func WritePacketCompressed(w io.Writer, p *Packet, threshold int) error {
	var body bytes.Buffer
	WriteVarInt(&body, p.ID)
	body.Write(p.Data)

	var payload bytes.Buffer
	if body.Len() < threshold {
		WriteVarInt(&payload, 0)
		payload.Write(body.Bytes())
	} else {
		WriteVarInt(&payload, int32(body.Len()))
		zw := zlib.NewWriter(&payload)
		if _, err := zw.Write(body.Bytes()); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
	}

	var out bytes.Buffer
	WriteVarInt(&out, int32(payload.Len()))
	out.Write(payload.Bytes())
	_, err := w.Write(out.Bytes())
	return err
}

// Conn frames packets over a network connection. Writes are serialised, so
// any goroutine may send to the same connection.
type Conn struct {
	net.Conn

	mu        sync.Mutex
	threshold atomic.Int32 // negative while compression is off
}

// NewConn wraps c with compression off.
func NewConn(c net.Conn) *Conn {
	conn := &Conn{Conn: c}
	conn.threshold.Store(-1)
	return conn
}

// SetCompression switches framing once Set Compression has been sent. A
// negative threshold turns compression off.
func (c *Conn) SetCompression(threshold int) {
	c.threshold.Store(int32(threshold))
}

// ReadPacket reads the next packet using the current framing. Only the
// connection's own read loop may call it.
func (c *Conn) ReadPacket() (*Packet, error) {
	if c.threshold.Load() >= 0 {
		return ReadPacketCompressed(c.Conn)
	}
	return ReadPacket(c.Conn)
}

// WritePacket sends p using the current framing.
func (c *Conn) WritePacket(p *Packet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t := c.threshold.Load(); t >= 0 {
		return WritePacketCompressed(c.Conn, p, int(t))
	}
	return WritePacket(c.Conn, p)
}
