// Package conv provides checked integer conversions.
//
// Descriptors are plain ints at the syscall boundary but uint32 keys in the
// descriptor bitmap, and permission values travel as uint32 modes. Every
// narrowing conversion in the module goes through this package so a bad value
// surfaces as ErrOverflow instead of silently wrapping.
package conv
