package prom

// noCopy is embedded into types that go vet should refuse to copy.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
