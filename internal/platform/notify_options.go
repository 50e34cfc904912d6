// Package platform sends desktop notifications through the host's
// notification service.
package platform

// AppName is reported to the notification service.
const AppName = "Mask Paint"

// Options configures how a notification is displayed.
type Options struct {
	// IconPath points to an image shown with the notification where the
	// service supports it.
	IconPath string
	// Timeout in milliseconds. Zero selects the service default.
	TimeoutMS int32
}
