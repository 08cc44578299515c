package util

import "runtime"

// HostParallelism returns the number of logical CPUs usable by the process.
// It is the shard count substituted when a caller asks for <= 0 shards.
func HostParallelism() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}

// ReasonableShardCount picks a practical lock-striping width based on CPU
// parallelism. Heuristic: nextPow2(2*GOMAXPROCS), clamped to [1..256].
func ReasonableShardCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(NextPow2(uint64(p * 2)))
	if n < 1 {
		n = 1
	}
	if n > 256 {
		n = 256
	}
	return n
}

// ShardIndex maps a 64-bit hash to a shard index, hash mod shards.
// Power-of-two counts take the mask path, which yields the same result.
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(shards)) {
		return int(hash & uint64(shards-1))
	}
	return int(hash % uint64(shards))
}

// CeilDiv returns ceil(total/parts) for total >= 0 and parts > 0, and 0 otherwise.
func CeilDiv(total, parts int) int {
	if total <= 0 || parts <= 0 {
		return 0
	}
	return (total + parts - 1) / parts
}

// IsPowerOfTwo reports whether x is a power of two (> 0).
func IsPowerOfTwo(x uint64) bool { return x != 0 && x&(x-1) == 0 }

// NextPow2 returns the smallest power of two >= x (1 for x <= 1),
// clamped to 1<<63 when the next power does not fit.
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	if x > 1<<63 {
		return 1 << 63
	}
	x--
	for s := uint(1); s < 64; s <<= 1 {
		x |= x >> s
	}
	return x + 1
}
