package application

import "sync"

// tickerExecutor serializes engine operations per ticker. The matching loop
// reads and writes both books and the market reserves across multiple steps,
// so everything touching one ticker runs in mutual exclusion while distinct
// tickers proceed in parallel.
type tickerExecutor struct {
	mtx   sync.Mutex
	locks map[string]*sync.Mutex
}

func newTickerExecutor() *tickerExecutor {
	return &tickerExecutor{locks: map[string]*sync.Mutex{}}
}

// lock acquires the ticker's exclusive lock and returns its release func.
func (e *tickerExecutor) lock(ticker string) func() {
	e.mtx.Lock()
	lock, ok := e.locks[ticker]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[ticker] = lock
	}
	e.mtx.Unlock()

	lock.Lock()
	return lock.Unlock
}
