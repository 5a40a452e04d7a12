package fdscope

import (
	"github.com/hupe1980/fdscope/internal/fdset"
	"github.com/hupe1980/fdscope/pool"
)

const descriptorsKey = "fdscope.descriptors"

func descriptorsOf(p *pool.Pool) *fdset.Set {
	return p.UserdataOrInit(descriptorsKey, func() any { return fdset.New() }).(*fdset.Set)
}

// OpenDescriptors returns, in ascending order, the descriptors owned by
// handles of p that are still open. Subpools are not included.
func OpenDescriptors(p *pool.Pool) []int {
	v, ok := p.Userdata(descriptorsKey)
	if !ok {
		return nil
	}
	return v.(*fdset.Set).Slice()
}
