package provision

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 . Settler

// Settler drains the udev event queue so freshly created block
// devices have their /dev nodes before the next step reads them.
type Settler interface {
	Trigger() error
	Settle() error
	EnsureDeviceReadable(path string) error
}
