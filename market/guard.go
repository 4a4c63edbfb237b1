package market

import (
	"sync"
)

//syncGuard 同步器的单槽并发守卫。
//同步进行中时，普通请求直接放弃；强制请求接管守卫并使在途一轮失效，
//在途一轮完成时发现代次已变，丢弃自己的结果。后发起的一轮胜出。
type syncGuard struct {
	mu      sync.Mutex
	running bool
	gen     uint64
}

//begin 尝试开始一轮同步，返回代次。进行中且非强制时返回false
func (g *syncGuard) begin(force bool) (uint64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running && !force {
		return 0, false
	}
	g.gen++
	g.running = true
	return g.gen, true
}

//end 结束一轮同步，返回该轮结果是否仍然有效
func (g *syncGuard) end(gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.gen {
		return false
	}
	g.running = false
	return true
}
