// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Provides cache-line (64-byte) aligned flat buffers so that a hash block
// starts on a line boundary and collision chains touch as few lines as possible.
package mem
