package ports

import "github.com/reglet-dev/zendext-sdk/domain/entities"

// ErrorObserver is the dispatcher signature the host invokes for every
// diagnostic event. File and message are host-owned for the duration of the call.
type ErrorObserver func(kind entities.ErrorType, file *entities.ZendStr, line uint32, message *entities.ZendStr)

// ErrorObserverHost is the host's process-wide observer registration point.
type ErrorObserverHost interface {
	RegisterErrorObserver(dispatch ErrorObserver)
}
