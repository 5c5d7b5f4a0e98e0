//go:build !linux

package thread

// currentThreadID is unavailable here; a zero id disables the control role check.
func currentThreadID() int64 {
	return 0
}
