package notification

var Platforms = map[string]bool{
	"android": true,
	"ios":     true,
	"web":     true,
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
