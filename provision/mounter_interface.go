package provision

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 . Mounter

type Mounter interface {
	Mount(source, target, fstype string, options ...string) error
	Unmount(target string) (didUnmount bool, err error)
	IsMounted(devicePathOrMountPoint string) (bool, error)
	SwapOn(path string) error
}
