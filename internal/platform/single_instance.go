package platform

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const (
	activateCommand = "activate"
	dialTimeout     = 500 * time.Millisecond
)

// InstanceGuard holds the single-instance lock.
type InstanceGuard struct {
	listener net.Listener
	address  string
	logger   *zap.Logger
	mu       sync.Mutex
	done     chan struct{}
}

// AcquireSingleInstance binds a deterministic localhost port. When another
// instance holds it, that instance is asked to come forward and
// ErrAlreadyRunning is returned.
func AcquireSingleInstance(appName string, logger *zap.Logger) (*InstanceGuard, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	address := fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		if notifyErr := notifyRunning(address); notifyErr != nil {
			logger.Warn("notify running instance", zap.Error(notifyErr))
		}
		return nil, ErrAlreadyRunning
	}
	return &InstanceGuard{listener: listener, address: address, logger: logger.Named("instance")}, nil
}

// Serve calls onActivate each time a second launch asks this instance to
// come forward. It returns immediately; Release stops it.
func (guard *InstanceGuard) Serve(onActivate func()) {
	guard.mu.Lock()
	defer guard.mu.Unlock()
	if guard.done != nil {
		return
	}
	done := make(chan struct{})
	guard.done = done

	go func() {
		defer close(done)
		for {
			conn, err := guard.listener.Accept()
			if err != nil {
				return
			}
			if guard.readCommand(conn) == activateCommand && onActivate != nil {
				onActivate()
			}
		}
	}()
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	err := guard.listener.Close()

	guard.mu.Lock()
	done := guard.done
	guard.mu.Unlock()
	if done != nil {
		<-done
	}
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

func (guard *InstanceGuard) readCommand(conn net.Conn) string {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(dialTimeout))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		guard.logger.Debug("read instance command", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(line)
}

func notifyRunning(address string) error {
	conn, err := net.DialTimeout("tcp", address, dialTimeout)
	if err != nil {
		return fmt.Errorf("dial instance: %w", err)
	}
	defer conn.Close()
	if _, err := fmt.Fprintln(conn, activateCommand); err != nil {
		return fmt.Errorf("send activate: %w", err)
	}
	return nil
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
