// Package entities provides the host-neutral value types shared by every SDK layer:
// host addresses, host strings, class flags, diagnostic event kinds and the
// extension manifest. Finished ABI records live in package builders, which is the
// only place they can be created.
package entities
