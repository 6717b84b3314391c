package util

import "runtime"

// GetOptimalPoolSize returns the number of parsers kept per grammar.
//
// Formula: min(max(runtime.NumCPU(), 2), 8)
//
// Generation itself is sequential, so one parser would do; the extra
// headroom covers watch-mode regeneration overlapping with MCP tool calls
// that re-collect the tree.
func GetOptimalPoolSize() int {
	size := runtime.NumCPU()
	if size < 2 {
		size = 2
	}
	if size > 8 {
		size = 8
	}
	return size
}

// GetOptimalPoolSizeWithOverride returns override when positive and
// GetOptimalPoolSize otherwise.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
