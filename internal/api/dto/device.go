package dto

// DeviceFixRequest is a one-time position reported by the browser's
// geolocation API: either a fix or the error it produced.
type DeviceFixRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required_without=Error,omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"required_without=Error,omitempty,longitude"`
	// Milliseconds since the Unix epoch; 0 means "now".
	Timestamp int64           `json:"timestamp" validate:"min=0"`
	Error     *DeviceFixError `json:"error,omitempty"`
}

type DeviceFixError struct {
	// 1 permission denied, 2 position unavailable, 3 timeout.
	Code    int    `json:"code" validate:"min=1,max=3"`
	Message string `json:"message,omitempty"`
}
