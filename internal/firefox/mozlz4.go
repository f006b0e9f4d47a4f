package firefox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// mozlz4 header: 8-byte magic "mozLz40\x00" + 4-byte LE uint32 decompressed size.
var mozLz4Magic = []byte("mozLz40\x00")

const (
	mozLz4HeaderSize = 12

	// DefaultMaxRatio bounds decoded size relative to the compressed block.
	// 255 is the best ratio an LZ4 block can reach.
	DefaultMaxRatio = 255

	minMatch     = 4
	ratioSlack   = 16
	maxPrealloc  = 64 << 20
	runExtension = 15
)

var (
	ErrBadMagic          = errors.New("mozlz4: invalid header magic")
	ErrCorrupt           = errors.New("mozlz4: corrupt data")
	ErrSizeLimitExceeded = errors.New("mozlz4: decoded size limit exceeded")
)

// DecompressMozLz4 decompresses data in Mozilla's mozlz4 format using the
// default size guard.
func DecompressMozLz4(data []byte) ([]byte, error) {
	return DecompressMozLz4Limit(data, DefaultMaxRatio)
}

// DecompressMozLz4Limit decompresses a mozlz4 container. The decoded size may
// not exceed maxRatio times the compressed block size.
func DecompressMozLz4Limit(data []byte, maxRatio int) ([]byte, error) {
	if len(data) < len(mozLz4Magic) || !bytes.Equal(data[:len(mozLz4Magic)], mozLz4Magic) {
		return nil, ErrBadMagic
	}
	if len(data) < mozLz4HeaderSize {
		return nil, fmt.Errorf("%w: header truncated (%d bytes)", ErrCorrupt, len(data))
	}
	if maxRatio < 1 {
		maxRatio = DefaultMaxRatio
	}

	declared := int(binary.LittleEndian.Uint32(data[8:mozLz4HeaderSize]))
	block := data[mozLz4HeaderSize:]

	limit := maxRatio*len(block) + ratioSlack
	if declared > limit {
		return nil, fmt.Errorf("%w: header declares %d bytes for a %d byte block", ErrSizeLimitExceeded, declared, len(block))
	}

	out, err := decodeBlock(block, declared, limit)
	if err != nil {
		return nil, err
	}
	if len(out) != declared {
		return nil, fmt.Errorf("%w: decoded %d bytes, header declares %d", ErrCorrupt, len(out), declared)
	}
	return out, nil
}

// decodeBlock decodes one raw LZ4 block. Every sequence is a token byte
// (literal length in the high nibble, match length minus 4 in the low one),
// optional 255-run length extensions, the literals, then a 2-byte LE offset.
// The final sequence carries literals only.
func decodeBlock(src []byte, sizeHint, limit int) ([]byte, error) {
	capHint := sizeHint
	if capHint > maxPrealloc {
		capHint = maxPrealloc
	}
	dst := make([]byte, 0, capHint)

	i := 0
	for {
		if i >= len(src) {
			return nil, fmt.Errorf("%w: block truncated at byte %d", ErrCorrupt, i)
		}
		token := src[i]
		i++

		litLen := int(token >> 4)
		if litLen == runExtension {
			n, next, err := readRunLength(src, i)
			if err != nil {
				return nil, err
			}
			litLen += n
			i = next
		}
		if litLen > len(src)-i {
			return nil, fmt.Errorf("%w: literal run of %d bytes overruns block at byte %d", ErrCorrupt, litLen, i)
		}
		if len(dst)+litLen > limit {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrSizeLimitExceeded, limit)
		}
		dst = append(dst, src[i:i+litLen]...)
		i += litLen

		if i == len(src) {
			return dst, nil
		}

		if len(src)-i < 2 {
			return nil, fmt.Errorf("%w: match offset truncated at byte %d", ErrCorrupt, i)
		}
		offset := int(binary.LittleEndian.Uint16(src[i:]))
		i += 2
		if offset == 0 {
			return nil, fmt.Errorf("%w: zero match offset at byte %d", ErrCorrupt, i-2)
		}
		if offset > len(dst) {
			return nil, fmt.Errorf("%w: match offset %d before start of output (%d bytes)", ErrCorrupt, offset, len(dst))
		}

		matchLen := int(token & 0x0f)
		if matchLen == runExtension {
			n, next, err := readRunLength(src, i)
			if err != nil {
				return nil, err
			}
			matchLen += n
			i = next
		}
		matchLen += minMatch
		if len(dst)+matchLen > limit {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrSizeLimitExceeded, limit)
		}

		start := len(dst) - offset
		if offset >= matchLen {
			dst = append(dst, dst[start:start+matchLen]...)
			continue
		}
		// Overlapping copy repeats the last offset bytes.
		for k := 0; k < matchLen; k++ {
			dst = append(dst, dst[start+k])
		}
	}
}

func readRunLength(src []byte, i int) (n, next int, err error) {
	for {
		if i >= len(src) {
			return 0, i, fmt.Errorf("%w: length extension truncated at byte %d", ErrCorrupt, i)
		}
		b := src[i]
		i++
		n += int(b)
		if b != 255 {
			return n, i, nil
		}
	}
}

// CompressMozLz4 wraps plain in a mozlz4 container.
func CompressMozLz4(plain []byte) ([]byte, error) {
	var block []byte
	if len(plain) == 0 {
		// A lone zero token is the empty block.
		block = []byte{0}
	} else {
		buf := make([]byte, lz4.CompressBlockBound(len(plain)))
		n, err := lz4.CompressBlock(plain, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("mozlz4: compress failed: %w", err)
		}
		block = buf[:n]
	}

	out := make([]byte, 0, mozLz4HeaderSize+len(block))
	out = append(out, mozLz4Magic...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(plain)))
	return append(out, block...), nil
}
