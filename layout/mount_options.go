package layout

import (
	"strings"
)

// MountOption is a single mount(8) option, either a bare flag such as
// "noatime" or a key=value form such as "compress=zstd:3".
type MountOption string

// Key returns the option name, ignoring any value.
func (o MountOption) Key() string {
	return strings.SplitN(string(o), "=", 2)[0]
}

// MountOptions keeps insertion order and is unique by option key:
// setting compress=zstd:3 replaces an earlier compress=lzo in place.
type MountOptions []MountOption

func (m MountOptions) Set(option MountOption) MountOptions {
	key := option.Key()
	for i, existing := range m {
		if existing.Key() == key {
			m[i] = option
			return m
		}
	}
	return append(m, option)
}

func (m MountOptions) Has(key string) bool {
	for _, existing := range m {
		if existing.Key() == key {
			return true
		}
	}
	return false
}

// Join renders the list in the comma separated form mount(8) and fstab
// expect.
func (m MountOptions) Join() string {
	parts := make([]string, 0, len(m))
	for _, option := range m {
		parts = append(parts, string(option))
	}
	return strings.Join(parts, ",")
}
