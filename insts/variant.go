package insts

// Variant selects the ISA base and extensions the decoder accepts.
// It is consulted only at decode time: encodings gated on a disabled
// base or extension fail with ErrInvalidEncoding.
type Variant struct {
	// XLen is the register width in bits, 32 or 64.
	XLen uint8

	// Compressed enables the C extension (16-bit encodings).
	Compressed bool
}

// RV32I is the 32-bit base integer ISA.
var RV32I = Variant{XLen: 32}

// RV64I is the 64-bit base integer ISA.
var RV64I = Variant{XLen: 64}

// RV32IC is RV32I with the C extension.
var RV32IC = Variant{XLen: 32, Compressed: true}

// RV64IC is RV64I with the C extension.
var RV64IC = Variant{XLen: 64, Compressed: true}
