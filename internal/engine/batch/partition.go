package batch

// Partition splits items into exactly k contiguous shards. The first
// len(items)%k shards hold one extra item. A k below 1 is treated as 1.
// Shards alias the input slice.
func Partition[T any](items []T, k int) [][]T {
	bounds := ShardBounds(len(items), k)
	shards := make([][]T, len(bounds))
	for i, b := range bounds {
		shards[i] = items[b[0]:b[1]:b[1]]
	}
	return shards
}

// ShardBounds returns the [start, end) index pairs Partition would use for
// totalItems split into k shards.
func ShardBounds(totalItems, k int) [][2]int {
	if k < 1 {
		k = 1
	}

	base := totalItems / k
	extra := totalItems % k

	bounds := make([][2]int, k)
	start := 0
	for i := range k {
		size := base
		if i < extra {
			size++
		}
		bounds[i] = [2]int{start, start + size}
		start += size
	}
	return bounds
}
