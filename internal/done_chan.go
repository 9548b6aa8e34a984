package internal

import "sync"

// DoneChan is closed exactly once to signal that a background activity
// has fully terminated.
type DoneChan chan struct{}

// DoneFunc initiates termination of a background activity and returns
// the channel that closes once it has finished.
type DoneFunc func() DoneChan

// Wrap returns a DoneChan that closes once wg's counter reaches zero.
func Wrap(wg *sync.WaitGroup) DoneChan {
	ret := make(DoneChan)
	go func() {
		wg.Wait()
		close(ret)
	}()
	return ret
}
