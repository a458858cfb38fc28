package gpio

import "sync"

// edgeWatcher is a goroutine that stands in for an interrupt context on
// drivers that only expose polled or blocking edge detection.
type edgeWatcher struct {
	stop chan struct{}
	once sync.Once
}

// startWatcher calls handler each time wait reports an edge. wait should
// return within a bounded time so a halted watcher can exit.
func startWatcher(wait func() bool, handler func()) *edgeWatcher {
	w := &edgeWatcher{stop: make(chan struct{})}
	go func() {
		for {
			select {
			case <-w.stop:
				return
			default:
			}
			if !wait() {
				continue
			}
			select {
			case <-w.stop:
				return
			default:
			}
			handler()
		}
	}()
	return w
}

// halt stops the watcher. It does not wait for the goroutine to exit, so
// it is safe to call from within the handler. A handler call that had
// already passed its stop check may still start once after halt returns;
// no further calls follow it.
func (w *edgeWatcher) halt() {
	if w == nil {
		return
	}
	w.once.Do(func() { close(w.stop) })
}
