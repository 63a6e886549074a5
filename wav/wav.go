// Package wav assembles raw PCM sample data into WAV containers.
//
// Every clip produced by the speech layer is headerless single-channel PCM.
// This package wraps one or more such payloads in the fixed 44-byte RIFF/WAVE
// preamble so the result is playable by external tools and exportable as a
// download artifact. All functions are pure: they allocate their output and
// never mutate their inputs.
package wav

import (
	"encoding/binary"
	"errors"
	"time"
)

// ErrNoClips is returned by Merge when the input list is empty. Callers are
// expected to filter to ready clips before merging and to surface this as a
// "nothing to export" condition rather than writing an empty file.
var ErrNoClips = errors.New("wav: no clips to merge")

// HeaderSize is the length in bytes of the RIFF/WAVE preamble for linear PCM.
const HeaderSize = 44

// Format describes the sample layout shared by a set of PCM payloads.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// DefaultFormat matches the speech service output: 24kHz mono 16-bit PCM.
var DefaultFormat = Format{SampleRate: 24000, Channels: 1, BitsPerSample: 16}

// BlockAlign returns the byte size of one sample frame across all channels.
func (f Format) BlockAlign() int {
	return f.Channels * f.BitsPerSample / 8
}

// ByteRate returns the number of payload bytes consumed per second.
func (f Format) ByteRate() int {
	return f.SampleRate * f.BlockAlign()
}

// Header creates a WAV header for dataSize bytes of raw PCM in format f.
// dataSize counts the sample payload only, not the header itself.
func Header(f Format, dataSize int) []byte {
	header := make([]byte, HeaderSize)
	totalSize := uint32(dataSize + 36) // bytes remaining after the ChunkSize field (44 - 8)

	// RIFF chunk descriptor
	copy(header[0:4], []byte("RIFF"))
	binary.LittleEndian.PutUint32(header[4:8], totalSize)
	copy(header[8:12], []byte("WAVE"))

	// "fmt " subchunk
	copy(header[12:16], []byte("fmt "))
	binary.LittleEndian.PutUint32(header[16:20], 16) // subchunk size for PCM
	binary.LittleEndian.PutUint16(header[20:22], 1)  // audio format 1 = linear PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(f.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(f.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(f.ByteRate()))
	binary.LittleEndian.PutUint16(header[32:34], uint16(f.BlockAlign()))
	binary.LittleEndian.PutUint16(header[34:36], uint16(f.BitsPerSample))

	// "data" subchunk
	copy(header[36:40], []byte("data"))
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	return header
}

// Encode wraps a single PCM payload in a WAV container.
func Encode(f Format, pcm []byte) []byte {
	out := make([]byte, HeaderSize+len(pcm))
	copy(out, Header(f, len(pcm)))
	copy(out[HeaderSize:], pcm)
	return out
}

// Merge concatenates the payloads of clips, in order, into one WAV container.
// All clips must share format f; the caller guarantees this since every clip
// originates from the same speech service configuration.
func Merge(f Format, clips [][]byte) ([]byte, error) {
	if len(clips) == 0 {
		return nil, ErrNoClips
	}

	totalSize := 0
	for _, clip := range clips {
		totalSize += len(clip)
	}

	out := make([]byte, HeaderSize+totalSize)
	copy(out, Header(f, totalSize))
	offset := HeaderSize
	for _, clip := range clips {
		copy(out[offset:], clip)
		offset += len(clip)
	}
	return out, nil
}

// Duration returns the playback time of n bytes of raw PCM in format f.
func Duration(f Format, n int) time.Duration {
	rate := f.ByteRate()
	if rate <= 0 || n <= 0 {
		return 0
	}
	return time.Duration(float64(n) / float64(rate) * float64(time.Second))
}
