// Package allocator computes how many transport platforms a set of items
// needs when each platform carries at most two items under a shared weight
// limit. Pairing the heaviest remaining item with the lightest one that still
// fits yields the minimum for this two-per-platform variant of bin packing.
package allocator
