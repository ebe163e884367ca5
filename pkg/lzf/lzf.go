// Package lzf implements the LZF compression format used by PCD
// binary_compressed payloads: a byte stream of literal runs and
// back-references, self-describing except for the output length.
package lzf

import "errors"

var (
	ErrCorrupt     = errors.New("corrupt lzf data")
	ErrShortBuffer = errors.New("output buffer too small")
)

const (
	hashLog = 13
	hashLen = 1 << hashLog

	maxOff = 1 << 13 // back-reference distance is 13 bits
	maxRef = 264     // 2 + 7 + 255
	maxLit = 32      // literal run length fits in a 5-bit control byte
)

// Decompress expands src into dst and returns the number of bytes
// written. dst must be at least as large as the original data; a
// stream that would write past dst or reference before its start
// fails with ErrShortBuffer or ErrCorrupt.
func Decompress(src, dst []byte) (int, error) {
	var ip, op int
	for ip < len(src) {
		ctrl := int(src[ip])
		ip++

		if ctrl < 32 {
			// literal run of ctrl+1 bytes
			n := ctrl + 1
			if ip+n > len(src) {
				return 0, ErrCorrupt
			}
			if op+n > len(dst) {
				return 0, ErrShortBuffer
			}
			copy(dst[op:], src[ip:ip+n])
			ip += n
			op += n
			continue
		}

		// back-reference
		length := ctrl >> 5
		if length == 7 {
			if ip >= len(src) {
				return 0, ErrCorrupt
			}
			length += int(src[ip])
			ip++
		}
		if ip >= len(src) {
			return 0, ErrCorrupt
		}
		ref := op - ((ctrl & 0x1f) << 8) - int(src[ip]) - 1
		ip++
		if ref < 0 {
			return 0, ErrCorrupt
		}
		if op+length+2 > len(dst) {
			return 0, ErrShortBuffer
		}
		// byte-at-a-time so the reference may overlap fresh output
		for i := 0; i < length+2; i++ {
			dst[op] = dst[ref]
			op++
			ref++
		}
	}
	return op, nil
}

func hash(p []byte) uint32 {
	v := uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
	return (v * 2654435761) >> (32 - hashLog) & (hashLen - 1)
}

// Compress writes an LZF stream for src into dst and returns the
// number of bytes written. Worst case output is one extra control
// byte per 32 input bytes; size dst with that headroom.
func Compress(src, dst []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	var htab [hashLen]int
	var ip, op, lit int

	if op >= len(dst) {
		return 0, ErrShortBuffer
	}
	op++ // reserve the first run header
	for ip < len(src) {
		var ref int
		match := false
		if ip+2 < len(src) {
			h := hash(src[ip:])
			ref = htab[h]
			htab[h] = ip
			match = ref < ip && ip-ref-1 < maxOff &&
				src[ref] == src[ip] && src[ref+1] == src[ip+1] && src[ref+2] == src[ip+2]
		}

		if !match {
			if op >= len(dst) {
				return 0, ErrShortBuffer
			}
			dst[op] = src[ip]
			op++
			ip++
			lit++
			if lit == maxLit {
				dst[op-lit-1] = byte(lit - 1)
				lit = 0
				if op >= len(dst) {
					return 0, ErrShortBuffer
				}
				op++ // next run header
			}
			continue
		}

		length := 3
		for ip+length < len(src) && length < maxRef && src[ref+length] == src[ip+length] {
			length++
		}

		// stop the pending literal run, dropping the header if empty
		if lit != 0 {
			dst[op-lit-1] = byte(lit - 1)
			lit = 0
		} else {
			op--
		}

		off := ip - ref - 1
		l := length - 2
		if l < 7 {
			if op+2 > len(dst) {
				return 0, ErrShortBuffer
			}
			dst[op] = byte(l<<5) | byte(off>>8)
			op++
		} else {
			if op+3 > len(dst) {
				return 0, ErrShortBuffer
			}
			dst[op] = 7<<5 | byte(off>>8)
			dst[op+1] = byte(l - 7)
			op += 2
		}
		dst[op] = byte(off)
		op++

		// index the positions inside the match so long runs chain
		for i := ip + 1; i < ip+length && i+2 < len(src); i++ {
			htab[hash(src[i:])] = i
		}
		ip += length

		if op >= len(dst) {
			return 0, ErrShortBuffer
		}
		op++ // reserve the next run header
	}

	if lit != 0 {
		dst[op-lit-1] = byte(lit - 1)
	} else {
		op--
	}
	return op, nil
}
