package ports

// IniPolicy decides which configuration directives an extension may set.
type IniPolicy interface {
	// AllowIni reports whether the directive name may be written.
	AllowIni(name string) bool
}
