package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// ChunkRanges splits [0, n) into consecutive half-open ranges of at most size elements.
// A non-positive size yields a single range covering everything.
//
// Parameters:
//   - n: the total element count
//   - size: the maximum number of elements per range
//
// Returns:
//   - [][2]int: start/end pairs in ascending order, empty when n is zero
func ChunkRanges(n, size int) [][2]int {
	if n <= 0 {
		return nil
	}
	if size <= 0 || size >= n {
		return [][2]int{{0, n}}
	}
	ranges := make([][2]int, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		ranges = append(ranges, [2]int{start, min(start+size, n)})
	}
	return ranges
}
