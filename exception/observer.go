package exception

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
)

// ObserverRegistry fans host diagnostic events out to Go listeners.
// It is safe for concurrent use.
type ObserverRegistry struct {
	installed atomic.Bool
	installMu sync.Mutex

	mu        sync.RWMutex
	listeners []ports.ErrorObserver

	logger *slog.Logger
}

// RegistryOption configures an ObserverRegistry.
type RegistryOption func(*ObserverRegistry)

// WithLogger sets the logger used to report recovered listener panics.
// The default is slog.Default() at the time of the panic.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *ObserverRegistry) {
		r.logger = logger
	}
}

// NewObserverRegistry creates an empty registry. Nothing is installed in the
// host until the first Register.
func NewObserverRegistry(opts ...RegistryOption) *ObserverRegistry {
	r := &ObserverRegistry{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends listener. The first call installs the registry's
// dispatcher into host; later calls only append, whatever host they pass.
// A nil listener is ignored.
func (r *ObserverRegistry) Register(host ports.ErrorObserverHost, listener ports.ErrorObserver) {
	if listener == nil {
		return
	}

	r.mu.Lock()
	r.listeners = append(r.listeners, listener)
	r.mu.Unlock()

	if r.installed.Load() {
		return
	}
	r.installMu.Lock()
	defer r.installMu.Unlock()
	if r.installed.Load() {
		return
	}
	host.RegisterErrorObserver(r.Dispatch)
	r.installed.Store(true)
}

// Installed reports whether the dispatcher has been handed to the host.
func (r *ObserverRegistry) Installed() bool {
	return r.installed.Load()
}

// Len returns the number of registered listeners.
func (r *ObserverRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

// Dispatch invokes every listener in registration order with the same
// arguments. It is the function installed into the host. Listeners registered
// while an event is being dispatched see the next event.
func (r *ObserverRegistry) Dispatch(kind entities.ErrorType, file *entities.ZendStr, line uint32, message *entities.ZendStr) {
	r.mu.RLock()
	listeners := r.listeners[:len(r.listeners):len(r.listeners)]
	r.mu.RUnlock()

	for i, listener := range listeners {
		r.call(i, listener, kind, file, line, message)
	}
}

func (r *ObserverRegistry) call(i int, listener ports.ErrorObserver, kind entities.ErrorType, file *entities.ZendStr, line uint32, message *entities.ZendStr) {
	defer func() {
		if rec := recover(); rec != nil {
			logger := r.logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.Debug("error observer panicked", "listener", i, "type", kind.String(), "panic", rec)
		}
	}()
	listener(kind, file, line, message)
}

var defaultRegistry = NewObserverRegistry()

// DefaultRegistry returns the process-wide registry used by RegisterErrorObserver.
func DefaultRegistry() *ObserverRegistry {
	return defaultRegistry
}

// RegisterErrorObserver registers listener with the process-wide registry.
func RegisterErrorObserver(host ports.ErrorObserverHost, listener ports.ErrorObserver) {
	defaultRegistry.Register(host, listener)
}
