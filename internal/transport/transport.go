// Package transport owns the Unix-domain socket connection to the Wayland
// compositor.
package transport

import (
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/bnema/hyacinth/internal/logger"
)

// DefaultDisplay is the socket name used when WAYLAND_DISPLAY is unset.
const DefaultDisplay = "wayland-0"

var (
	ErrNoRuntimeDir = errors.New("XDG_RUNTIME_DIR is not set")
	ErrPathTooLong  = errors.New("socket path does not fit in sockaddr_un")
	ErrSocketCreate = errors.New("failed to create socket")
	ErrConnect      = errors.New("failed to connect to compositor")
	ErrIO           = errors.New("socket I/O error")
	ErrClosed       = errors.New("connection closed by compositor")
)

// Dialer resolves the compositor socket and connects to it. Zero-valued
// fields fall back to the environment and the real socket calls.
type Dialer struct {
	// LookupEnv replaces os.LookupEnv for XDG_RUNTIME_DIR and WAYLAND_DISPLAY.
	LookupEnv func(key string) (string, bool)
	// Socket and Connect replace unix.Socket and unix.Connect.
	Socket  func(domain, typ, proto int) (int, error)
	Connect func(fd int, sa unix.Sockaddr) error

	// RuntimeDir and Display override the environment when non-empty.
	RuntimeDir string
	Display    string
}

// SocketPath builds ${XDG_RUNTIME_DIR}/${WAYLAND_DISPLAY:-wayland-0}. An
// absolute WAYLAND_DISPLAY is used as is.
func (d *Dialer) SocketPath() (string, error) {
	display := d.Display
	if display == "" {
		if v, ok := d.lookupEnv("WAYLAND_DISPLAY"); ok && v != "" {
			display = v
		} else {
			display = DefaultDisplay
		}
	}

	var path string
	if filepath.IsAbs(display) {
		path = display
	} else {
		dir := d.RuntimeDir
		if dir == "" {
			v, ok := d.lookupEnv("XDG_RUNTIME_DIR")
			if !ok || v == "" {
				return "", ErrNoRuntimeDir
			}
			dir = v
		}
		path = filepath.Join(dir, display)
	}

	// sun_path must also hold the terminating NUL
	if len(path) >= len(unix.RawSockaddrUnix{}.Path) {
		return "", fmt.Errorf("%w: %s (%d bytes)", ErrPathTooLong, path, len(path))
	}
	return path, nil
}

// Dial connects to the compositor socket. Path resolution happens before
// any socket is created.
func (d *Dialer) Dial() (*Conn, error) {
	path, err := d.SocketPath()
	if err != nil {
		return nil, err
	}

	socket := d.Socket
	if socket == nil {
		socket = unix.Socket
	}
	connect := d.Connect
	if connect == nil {
		connect = unix.Connect
	}

	fd, err := socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSocketCreate, err)
	}

	if err := connect(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("%w: %s: %v", ErrConnect, path, err)
	}

	logger.Debug("Connected to compositor", "socket", path, "fd", fd)
	return &Conn{fd: fd, path: path}, nil
}

func (d *Dialer) lookupEnv(key string) (string, bool) {
	if d.LookupEnv != nil {
		return d.LookupEnv(key)
	}
	return lookupEnv(key)
}
