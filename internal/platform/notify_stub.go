//go:build !linux && !darwin

package platform

// Notify is a no-op where no notification service is wired.
func Notify(title, body string, opts Options) error {
	return nil
}
