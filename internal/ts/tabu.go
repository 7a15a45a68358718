package ts

// tabuList — кольцевой буфер фиксированного размера
// с map для быстрой проверки табуированности.
type tabuList struct {
	m   map[uint64]int // ключ → итерация истечения табу
	key []uint64
	exp []int
	i   int
}

func newTabuList(capacity int) *tabuList {
	if capacity < 8 {
		capacity = 8
	}
	return &tabuList{
		m:   make(map[uint64]int, capacity*2),
		key: make([]uint64, capacity),
		exp: make([]int, capacity),
	}
}

// IsTabu проверяет, запрещён ли ключ на итерации iter.
func (t *tabuList) IsTabu(k uint64, iter int) bool {
	exp, ok := t.m[k]
	return ok && exp > iter
}

// Add запрещает ключ до итерации expiry, вытесняя самый старый.
func (t *tabuList) Add(k uint64, expiry int) {
	oldK := t.key[t.i]
	if curExp, ok := t.m[oldK]; ok && curExp == t.exp[t.i] {
		delete(t.m, oldK)
	}

	t.key[t.i] = k
	t.exp[t.i] = expiry
	t.m[k] = expiry

	t.i++
	if t.i >= len(t.key) {
		t.i = 0
	}
}

// assignKey — ключ атрибута «задача task на исполнителе worker».
func assignKey(task, worker int) uint64 {
	return uint64(uint32(task))<<32 | uint64(uint32(worker))
}
