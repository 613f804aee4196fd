package ipc

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// maxFrameBytes bounds a single frame's payload so a malformed or
// hostile length prefix can't make ReadFrame allocate unbounded
// memory before the body even arrives.
const maxFrameBytes = 16 << 20

// WriteFrame writes one length-prefixed frame: a 4-byte big-endian
// payload length followed by the payload itself.
func WriteFrame(w io.Writer, payload []byte) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame written by WriteFrame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(header[:])
	if n > maxFrameBytes {
		return nil, fmt.Errorf("frame of %d bytes exceeds maximum %d", n, maxFrameBytes)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload: %w", err)
	}
	return payload, nil
}

// WriteClientMessage frames and writes msg.
func WriteClientMessage(w io.Writer, msg ClientMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal client message: %w", err)
	}
	return WriteFrame(w, payload)
}

// ReadClientMessage reads and decodes one framed ClientMessage.
func ReadClientMessage(r io.Reader) (ClientMessage, error) {
	var msg ClientMessage
	payload, err := ReadFrame(r)
	if err != nil {
		return msg, err
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, fmt.Errorf("unmarshal client message: %w", err)
	}
	return msg, nil
}

// WriteServerMessage frames and writes msg.
func WriteServerMessage(w io.Writer, msg ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal server message: %w", err)
	}
	return WriteFrame(w, payload)
}

// ReadServerMessage reads and decodes one framed ServerMessage.
func ReadServerMessage(r io.Reader) (ServerMessage, error) {
	var msg ServerMessage
	payload, err := ReadFrame(r)
	if err != nil {
		return msg, err
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, fmt.Errorf("unmarshal server message: %w", err)
	}
	return msg, nil
}
