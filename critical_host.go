//go:build !tinygo

package ledkit

func newSection() CriticalSection {
	return &MutexSection{}
}
