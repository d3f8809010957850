package timer

import (
	"sync"
	"time"
)

// Repeating - один самоперезапускающийся таймер.
// Следующий запуск планируется только после завершения предыдущего вызова,
// поэтому одновременно существует не больше одного отложенного вызова.
type Repeating struct {
	mu       sync.Mutex
	interval time.Duration
	fn       func()
	t        *time.Timer
	armed    bool
	gen      uint64
}

// NewRepeating создает таймер, который вызывает fn каждые interval
func NewRepeating(interval time.Duration, fn func()) *Repeating {
	return &Repeating{
		interval: interval,
		fn:       fn,
	}
}

// Start взводит таймер. Повторный вызов на взведённом таймере ничего не делает.
func (r *Repeating) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.armed {
		return false
	}
	r.armed = true
	r.gen++
	r.schedule(r.gen)
	return true
}

// Stop снимает таймер. После возврата новых вызовов fn не будет,
// хотя уже начавшийся вызов может завершиться.
func (r *Repeating) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.armed {
		return
	}
	r.armed = false
	r.gen++
	if r.t != nil {
		r.t.Stop()
		r.t = nil
	}
}

// Armed - взведён ли таймер
func (r *Repeating) Armed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.armed
}

// schedule вызывается под r.mu
func (r *Repeating) schedule(gen uint64) {
	r.t = time.AfterFunc(r.interval, func() {
		if !r.current(gen) {
			return
		}
		r.fn()

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.armed && r.gen == gen {
			r.schedule(gen)
		}
	})
}

func (r *Repeating) current(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.armed && r.gen == gen
}
