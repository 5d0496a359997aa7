package talent

// Capability records whether an optional system dependency is usable.
// Hosts resolve capabilities once at startup and inject them into talents.
type Capability struct {
	Name      string
	Available bool
	// Remedy tells the user how to make the capability available.
	Remedy string
}

// Available returns a usable capability.
func Available(name string) Capability {
	return Capability{Name: name, Available: true}
}

// Missing returns an unusable capability with a remedy.
func Missing(name, remedy string) Capability {
	return Capability{Name: name, Remedy: remedy}
}

// Err returns nil when the capability is usable, otherwise an Unavailable error.
func (c Capability) Err() error {
	if c.Available {
		return nil
	}
	msg := c.Name + " is not available."
	if c.Remedy != "" {
		msg += " " + c.Remedy
	}
	return Unavailable(msg)
}
