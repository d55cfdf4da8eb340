package cache

// Op is a handle on a background reconciliation started by a cache
// mutation. The optimistic change is already visible when Op is returned.
type Op struct {
	name string
	done chan struct{}
	err  error
}

func newOp(name string) *Op {
	return &Op{name: name, done: make(chan struct{})}
}

func (o *Op) finish(err error) {
	o.err = err
	close(o.done)
}

// Done is closed once the store confirmed or rejected the operation.
func (o *Op) Done() <-chan struct{} { return o.done }

// Wait blocks until the operation finished and returns its error.
func (o *Op) Wait() error {
	<-o.done
	return o.err
}

// Name is the operation kind: insert, remove, swap, edit, reorder or repair.
func (o *Op) Name() string { return o.name }
