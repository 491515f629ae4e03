package platform

type Windows struct{}

func init() {
	Register(&Windows{})
}

func (p *Windows) GetName() string {
	return "windows"
}

func (p *Windows) GetExecutableSuffix() string {
	return ".exe"
}
