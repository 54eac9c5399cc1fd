// utils.go — low-level helpers shared by the solver core, stratum I/O & driver.
package utils

import (
	"syscall"
	"unsafe"
)

///////////////////////////////////////////////////////////////////////////////
// Tiny zero-alloc conversions
///////////////////////////////////////////////////////////////////////////////

// B2s converts a []byte to string without an allocation.
// ⚠️ Caller must ensure the input slice remains valid and unchanged.
//
//go:nosplit
//go:inline
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// StoreLE64 writes v into b[0:8] in little-endian byte order.
// Explicit byte stores — endianness of the wire format must not depend
// on the host.
//
//go:nosplit
//go:inline
func StoreLE64(b []byte, v uint64) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)
}

// LoadLE64 reads a little-endian uint64 with explicit byte loads.
// Companion to StoreLE64 for wire-format parsing.
//
//go:nosplit
//go:inline
func LoadLE64(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

///////////////////////////////////////////////////////////////////////////////
// Integer & hex formatting — no fmt, no strconv on hot-adjacent paths
///////////////////////////////////////////////////////////////////////////////

// Itoa renders a signed int in decimal. Used only for operator narration.
//
//go:nosplit
func Itoa(v int) string {
	if v < 0 {
		return "-" + Utoa(uint64(-v))
	}
	return Utoa(uint64(v))
}

// Utoa renders an unsigned value in decimal without strconv.
//
//go:nosplit
func Utoa(v uint64) string {
	var buf [20]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
		if v == 0 {
			break
		}
	}
	return string(buf[i:])
}

const hexDigits = "0123456789abcdef"

// Hex renders b as lowercase hex. Cold path only (solution hashes, job ids).
func Hex(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0x0f]
	}
	return string(out)
}

// ParseHex decodes a hex string into bytes.
// Returns nil on any malformed input — callers treat nil as "reject".
func ParseHex(s string) []byte {
	if len(s)%2 != 0 {
		return nil
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		hi := hexNibble(s[i*2])
		lo := hexNibble(s[i*2+1])
		if hi == 0xff || lo == 0xff {
			return nil
		}
		out[i] = hi<<4 | lo
	}
	return out
}

//go:nosplit
//go:inline
func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0xff
}

///////////////////////////////////////////////////////////////////////////////
// Bit mixing
///////////////////////////////////////////////////////////////////////////////

// Mix64 is the splitmix64 finalizer. Drives the deterministic value
// streams the packed-storage stress fixtures are built from.
//
//go:nosplit
//go:inline
func Mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

///////////////////////////////////////////////////////////////////////////////
// Direct console output — bypasses fmt and the log package entirely
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes msg straight to stderr (fd 2). No locking, no alloc
// beyond the concatenation the caller already paid for.
//
//go:nosplit
func PrintWarning(msg string) {
	b := unsafe.Slice(unsafe.StringData(msg), len(msg))
	syscall.Write(2, b)
}

// PrintInfo writes msg straight to stdout (fd 1).
//
//go:nosplit
func PrintInfo(msg string) {
	b := unsafe.Slice(unsafe.StringData(msg), len(msg))
	syscall.Write(1, b)
}
