// Package macho inspects the structural header of a Mach-O executable
// directly from raw bytes, without spawning any external tooling.
package macho

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Mach-O magic numbers, as read big-endian from the first four bytes.
const (
	magic32   = 0xfeedface
	magic64   = 0xfeedfacf
	cigam32   = 0xcefaedfe
	cigam64   = 0xcffaedfe
	fatMagic  = 0xcafebabe
	fatCigam  = 0xbebafeca
	headerLen = 12 // magic + cputype + cpusubtype
)

// ErrMalformedHeader is returned when no recognized Mach-O magic is found at
// the expected offset. Downstream evidence collection cannot be trusted
// without a valid header, so callers treat this as fatal.
var ErrMalformedHeader = errors.New("no Mach-O magic found at expected offset")

// HeaderInfo describes the first structural header found in the byte stream.
// Derived once and immutable.
type HeaderInfo struct {
	Endianness string `json:"endian"`
	Bits       int    `json:"bit"`
	Arch       string `json:"arch"`
	SubArch    string `json:"subarch"`
}

// ParseHeader identifies the Mach-O header in data and reports bit width,
// declared endianness and CPU type/subtype names. Fat (universal) binaries
// are descended into their first architecture slice, mirroring how the
// header of the first slice is the one reported by inspection tools.
func ParseHeader(data []byte) (HeaderInfo, error) {
	if len(data) < headerLen {
		return HeaderInfo{}, ErrMalformedHeader
	}

	magic := binary.BigEndian.Uint32(data[0:4])
	switch magic {
	case fatMagic, fatCigam:
		return parseFat(data, magic == fatCigam)
	case magic32, magic64:
		return parseThin(data, "big", magic == magic64)
	case cigam32, cigam64:
		return parseThin(data, "little", magic == cigam64)
	}
	return HeaderInfo{}, ErrMalformedHeader
}

func parseThin(data []byte, endian string, is64 bool) (HeaderInfo, error) {
	var order binary.ByteOrder = binary.BigEndian
	if endian == "little" {
		order = binary.LittleEndian
	}
	cpuType := order.Uint32(data[4:8])
	cpuSubtype := order.Uint32(data[8:12])

	info := HeaderInfo{
		Endianness: endian,
		Bits:       32,
		Arch:       cpuTypeName(cpuType),
		SubArch:    cpuSubtypeName(cpuType, cpuSubtype),
	}
	if is64 {
		info.Bits = 64
	}
	return info, nil
}

// parseFat reads the fat header (always big-endian on disk unless
// byte-swapped) and parses the thin header of the first arch slice.
func parseFat(data []byte, swapped bool) (HeaderInfo, error) {
	var order binary.ByteOrder = binary.BigEndian
	if swapped {
		order = binary.LittleEndian
	}
	if len(data) < 20 {
		return HeaderInfo{}, ErrMalformedHeader
	}
	narch := order.Uint32(data[4:8])
	if narch == 0 {
		return HeaderInfo{}, ErrMalformedHeader
	}
	// fat_arch: cputype, cpusubtype, offset, size, align (5 x uint32)
	sliceOffset := order.Uint32(data[16:20])
	if uint64(sliceOffset)+headerLen > uint64(len(data)) {
		return HeaderInfo{}, ErrMalformedHeader
	}
	info, err := ParseHeader(data[sliceOffset:])
	if err != nil {
		return HeaderInfo{}, err
	}
	return info, nil
}

// CPU type constants, per <mach/machine.h>.
const (
	cpuArch64  = 0x01000000
	cpuI386    = 7
	cpuX8664   = cpuArch64 | cpuI386
	cpuArm     = 12
	cpuArm64   = cpuArch64 | cpuArm
	cpuPowerPC = 18
	cpuPPC64   = cpuArch64 | cpuPowerPC
)

var cpuTypeNames = map[uint32]string{
	1:          "VAX",
	6:          "MC680x0",
	cpuI386:    "i386",
	cpuX8664:   "x86_64",
	8:          "MIPS",
	10:         "MC98000",
	11:         "HPPA",
	cpuArm:     "ARM",
	cpuArm64:   "ARM64",
	13:         "MC88000",
	14:         "SPARC",
	15:         "i860",
	16:         "Alpha",
	cpuPowerPC: "PowerPC",
	cpuPPC64:   "PowerPC64",
}

func cpuTypeName(cpuType uint32) string {
	if name, ok := cpuTypeNames[cpuType]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%x)", cpuType)
}

var armSubtypeNames = map[uint32]string{
	0:  "CPU_SUBTYPE_ARM_ALL",
	5:  "CPU_SUBTYPE_ARM_V4T",
	6:  "CPU_SUBTYPE_ARM_V6",
	7:  "CPU_SUBTYPE_ARM_V5TEJ",
	8:  "CPU_SUBTYPE_ARM_XSCALE",
	9:  "CPU_SUBTYPE_ARM_V7",
	10: "CPU_SUBTYPE_ARM_V7F",
	11: "CPU_SUBTYPE_ARM_V7S",
	12: "CPU_SUBTYPE_ARM_V7K",
	14: "CPU_SUBTYPE_ARM_V6M",
	15: "CPU_SUBTYPE_ARM_V7M",
	16: "CPU_SUBTYPE_ARM_V7EM",
}

var arm64SubtypeNames = map[uint32]string{
	0: "CPU_SUBTYPE_ARM64_ALL",
	1: "CPU_SUBTYPE_ARM64_V8",
	2: "CPU_SUBTYPE_ARM64E",
}

var x86SubtypeNames = map[uint32]string{
	3: "CPU_SUBTYPE_X86_64_ALL",
	4: "CPU_SUBTYPE_X86_ARCH1",
	8: "CPU_SUBTYPE_X86_64_H",
}

// cpuSubtypeName resolves the sub-architecture name for a CPU type,
// masking the capability bits the kernel ORs into the high byte.
func cpuSubtypeName(cpuType, cpuSubtype uint32) string {
	sub := cpuSubtype & 0x00ffffff
	var names map[uint32]string
	switch cpuType {
	case cpuArm:
		names = armSubtypeNames
	case cpuArm64:
		names = arm64SubtypeNames
	case cpuI386, cpuX8664:
		names = x86SubtypeNames
	}
	if names != nil {
		if name, ok := names[sub]; ok {
			return name
		}
	}
	return fmt.Sprintf("%d", sub)
}
