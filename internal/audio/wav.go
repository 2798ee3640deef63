// Package audio knows just enough about RIFF/WAVE to check what the
// transcoder wrote and to describe the buffer handed to the speech engine.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	CanonicalSampleRate    = 16000
	CanonicalChannels      = 1
	CanonicalBitsPerSample = 16

	formatPCM = 1
)

var ErrNotWAV = errors.New("audio: not a RIFF/WAVE stream")

// Header is the decoded "fmt " chunk plus the size of the "data" chunk.
type Header struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataSize      uint32
}

// LinearPCM reports whether the stream is uncompressed integer PCM.
func (h Header) LinearPCM() bool {
	return h.AudioFormat == formatPCM && h.BitsPerSample > 0
}

// Duration in seconds, computed from the data chunk.
func (h Header) Duration() float64 {
	if h.ByteRate == 0 {
		return 0
	}
	return float64(h.DataSize) / float64(h.ByteRate)
}

// ReadHeader walks the chunk list until it has seen both "fmt " and "data".
func ReadHeader(r io.Reader) (Header, error) {
	var h Header

	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return h, fmt.Errorf("%w: %v", ErrNotWAV, err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return h, ErrNotWAV
	}

	seenFmt := false
	for {
		var ch [8]byte
		if _, err := io.ReadFull(r, ch[:]); err != nil {
			return h, fmt.Errorf("%w: missing data chunk", ErrNotWAV)
		}
		id := string(ch[0:4])
		size := binary.LittleEndian.Uint32(ch[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return h, fmt.Errorf("%w: short fmt chunk (%d)", ErrNotWAV, size)
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return h, fmt.Errorf("%w: %v", ErrNotWAV, err)
			}
			h.AudioFormat = binary.LittleEndian.Uint16(body[0:2])
			h.Channels = binary.LittleEndian.Uint16(body[2:4])
			h.SampleRate = binary.LittleEndian.Uint32(body[4:8])
			h.ByteRate = binary.LittleEndian.Uint32(body[8:12])
			h.BlockAlign = binary.LittleEndian.Uint16(body[12:14])
			h.BitsPerSample = binary.LittleEndian.Uint16(body[14:16])
			seenFmt = true
			if size%2 == 1 {
				if _, err := io.CopyN(io.Discard, r, 1); err != nil {
					return h, fmt.Errorf("%w: %v", ErrNotWAV, err)
				}
			}
		case "data":
			if !seenFmt {
				return h, fmt.Errorf("%w: data before fmt", ErrNotWAV)
			}
			h.DataSize = size
			return h, nil
		default:
			skip := int64(size) + int64(size%2)
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return h, fmt.Errorf("%w: truncated %q chunk", ErrNotWAV, id)
			}
		}
	}
}

// ReadHeaderFile opens path and decodes its header.
func ReadHeaderFile(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()
	return ReadHeader(f)
}

// EncodePCM16 wraps raw s16le samples in a canonical WAV container.
func EncodePCM16(pcm []byte, sampleRate, channels int) []byte {
	const bitsPerSample = 16
	bytesPerSample := bitsPerSample / 8

	dataSize := len(pcm)
	byteRate := sampleRate * channels * bytesPerSample
	blockAlign := channels * bytesPerSample

	buf := &bytes.Buffer{}

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(formatPCM))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	_, _ = buf.Write(pcm)

	return buf.Bytes()
}
