package discord

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Opcode identifies the kind of an IPC frame.
type Opcode uint32

// IPC opcodes.
const (
	OpHandshake Opcode = iota
	OpFrame
	OpClose
	OpPing
	OpPong
)

// MaxPayloadSize is the largest frame payload accepted in either direction.
const MaxPayloadSize = 1 << 20

// ErrPayloadTooLarge is returned for frames over [MaxPayloadSize].
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrIPCNotAvailable is returned when no Discord IPC endpoint accepts a connection.
var ErrIPCNotAvailable = errors.New("discord IPC not available")

// A frame is an 8-byte header, opcode then payload length (both uint32
// little-endian), followed by the JSON payload.

// EncodeFrame returns the wire form of one frame.
func EncodeFrame(op Opcode, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(payload), MaxPayloadSize)
	}
	buf := make([]byte, 0, 8+len(payload))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(op))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(payload)))
	return append(buf, payload...), nil
}

// DecodeFrame reads exactly one frame from r.
func DecodeFrame(r io.Reader) (Opcode, []byte, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, fmt.Errorf("read frame header: %w", err)
	}
	op := Opcode(binary.LittleEndian.Uint32(hdr[:4]))
	n := binary.LittleEndian.Uint32(hdr[4:])
	if n > MaxPayloadSize {
		return 0, nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, n, MaxPayloadSize)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("read frame payload: %w", err)
	}
	return op, payload, nil
}
