package platform

// Posix covers Unix-like targets, where executables carry no suffix
type Posix struct {
	name string
}

func init() {
	for _, name := range []string{"linux", "darwin", "freebsd", "openbsd", "netbsd"} {
		Register(&Posix{name: name})
	}
}

func (p *Posix) GetName() string {
	return p.name
}

func (p *Posix) GetExecutableSuffix() string {
	return ""
}
