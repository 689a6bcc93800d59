package worker

import "hash/fnv"

// Partitioner routes an intermediate key to one of nReduce shards.
type Partitioner func(key string, nReduce int) int

// HashPartition returns abs(fnv32a(key)) mod nReduce. The result depends only
// on key and nReduce.
func HashPartition(key string, nReduce int) int {
	if nReduce <= 0 {
		panic("nReduce must be > 0")
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()&0x7fffffff) % nReduce
}

func reducerForKey(p Partitioner, key string, nReduce int) (int, error) {
	if p == nil {
		p = HashPartition
	}
	id := p(key, nReduce)
	if id < 0 || id >= nReduce {
		return 0, &PartitionError{Key: key, Shard: id, NReduce: nReduce}
	}
	return id, nil
}
