// Package exception turns extension errors into host exceptions and relays
// host diagnostic events to Go listeners.
//
// An Exception is thrown at most once. When it carries a pre-built host object
// the object is raised as-is and the class, code and message are ignored;
// otherwise the host builds a new exception from them. Throwing with an
// interface or abstract class is refused before the host is called.
//
// The host accepts a single error observer per process. ObserverRegistry
// installs its own dispatcher on first registration and fans every event out
// to all registered listeners in registration order. A listener that panics
// is recovered and skipped so it can never abort the host's error path.
package exception
