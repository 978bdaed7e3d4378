//go:build !linux && !darwin

package tun

func New(cfg Config) (Device, error) {
	return nil, ErrUnsupported
}
