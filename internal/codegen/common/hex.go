package common

import "fmt"

// Hex formats a value as an upper-case 0x literal padded to the register's
// byte size (2 hex digits per byte).
func Hex(v uint64, size int) string {
	switch size {
	case 1:
		return fmt.Sprintf("0x%02X", v)
	case 2:
		return fmt.Sprintf("0x%04X", v)
	case 8:
		return fmt.Sprintf("0x%016X", v)
	default:
		return fmt.Sprintf("0x%08X", v)
	}
}

// ULit wraps a value in the unsigned literal-suffix macro matching the
// register size: _U_ for 8/16/32 bit values, _UL_ for 64.
func ULit(v uint64, size int) string {
	if size == 8 {
		return fmt.Sprintf("_UL_(%s)", Hex(v, size))
	}
	return fmt.Sprintf("_U_(%s)", Hex(v, size))
}
