package mtl

import "sync/atomic"

//LeafCounter counts leaves of one tree. A single counter is shared by pointer between all
//recursive builds of subtrees and is never reset in the middle of a build.
type LeafCounter struct {
	n atomic.Int64
}

//Increment registers one more leaf and returns the new total.
func (c *LeafCounter) Increment() int {
	return int(c.n.Add(1))
}

//Count returns the number of leaves registered so far.
func (c *LeafCounter) Count() int {
	return int(c.n.Load())
}
