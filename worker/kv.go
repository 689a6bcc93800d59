package worker

type KV struct {
	Key   string
	Value string
}

type byKey []KV

func (a byKey) Len() int           { return len(a) }
func (a byKey) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byKey) Less(i, j int) bool { return a[i].Key < a[j].Key }

// MrContext is handed to map and reduce functions to emit their output.
type MrContext interface {
	EmitIntermediate(key, value string)
	Emit(key, value string)
}

// chanContext forwards every emitted pair to the partition loop of a map stage.
type chanContext struct {
	ch chan<- KV
}

func (c chanContext) EmitIntermediate(key, value string) {
	c.ch <- KV{Key: key, Value: value}
}

func (c chanContext) Emit(key, value string) {
	c.ch <- KV{Key: key, Value: value}
}

// collector buffers the output of one reducer. A reduce call may emit zero,
// one or many pairs.
type collector struct {
	kvs []KV
}

func (c *collector) EmitIntermediate(key, value string) {
	c.kvs = append(c.kvs, KV{Key: key, Value: value})
}

func (c *collector) Emit(key, value string) {
	c.kvs = append(c.kvs, KV{Key: key, Value: value})
}
