package organizer

import (
	"fmt"

	"acordex/internal/config"
	"acordex/internal/port"
)

// ProviderFactory creates an Organizer from the organizer config.
type ProviderFactory func(cfg *config.OrganizerConfig) (port.Organizer, error)

// registry of organizer provider factories, populated explicitly via
// RegisterProvider at startup.
var providers = map[string]ProviderFactory{
	"noop": func(*config.OrganizerConfig) (port.Organizer, error) { return Noop{}, nil },
}

// RegisterProvider registers an organizer provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// New creates an Organizer using the factory registered for cfg.Provider.
func New(cfg *config.OrganizerConfig) (port.Organizer, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown organizer provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
