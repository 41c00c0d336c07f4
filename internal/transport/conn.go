package transport

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/bnema/hyacinth/internal/logger"
)

var lookupEnv = os.LookupEnv

// Space for a handful of SCM_RIGHTS descriptors per read
var oobSize = unix.CmsgSpace(4 * 28)

// Conn is a connected compositor socket. It is owned by a single goroutine;
// only Shutdown may be called concurrently.
type Conn struct {
	fd   int
	path string
	oob  []byte
}

// Fd returns the socket descriptor, the native display handle.
func (c *Conn) Fd() int {
	return c.fd
}

// Path returns the socket path the connection was dialed on.
func (c *Conn) Path() string {
	return c.path
}

// Send writes all of b, retrying on short writes and EINTR.
func (c *Conn) Send(b []byte) error {
	for len(b) > 0 {
		n, err := unix.Write(c.fd, b)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: write: %v", ErrIO, err)
		}
		b = b[n:]
	}
	return nil
}

// Receive blocks until at least one byte is read into buf. Descriptors
// passed alongside the data are closed: no event the shim handles carries
// one. A zero-length read means the compositor hung up.
func (c *Conn) Receive(buf []byte) (int, error) {
	if c.oob == nil {
		c.oob = make([]byte, oobSize)
	}
	for {
		n, oobn, _, _, err := unix.Recvmsg(c.fd, buf, c.oob, unix.MSG_CMSG_CLOEXEC)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("%w: recvmsg: %v", ErrIO, err)
		}
		if oobn > 0 {
			c.closeRights(c.oob[:oobn])
		}
		if n == 0 {
			return 0, ErrClosed
		}
		return n, nil
	}
}

func (c *Conn) closeRights(oob []byte) {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		logger.Warn("Failed to parse control message", "error", err)
		return
	}
	for i := range msgs {
		fds, err := unix.ParseUnixRights(&msgs[i])
		if err != nil {
			continue
		}
		for _, fd := range fds {
			logger.Debug("Closing unexpected file descriptor", "fd", fd)
			_ = unix.Close(fd)
		}
	}
}

// Shutdown shuts the socket down in both directions so a blocked Receive
// returns. The descriptor stays open until Close.
func (c *Conn) Shutdown() error {
	if err := unix.Shutdown(c.fd, unix.SHUT_RDWR); err != nil {
		return fmt.Errorf("%w: shutdown: %v", ErrIO, err)
	}
	return nil
}

// Close closes the socket. It must be called exactly once.
func (c *Conn) Close() error {
	if err := unix.Close(c.fd); err != nil {
		return fmt.Errorf("%w: close: %v", ErrIO, err)
	}
	c.fd = -1
	return nil
}
