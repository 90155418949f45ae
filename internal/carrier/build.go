package carrier

import (
	"fmt"

	"claims-service/internal/config"
)

// BuildRegistry assembles the carrier registry from configuration. The set of
// carriers the desk works with is fixed per deployment; adding a carrier means
// writing one adapter and registering it here.
func BuildRegistry(cfg config.CarrierConfig) (*Registry, error) {
	registry := NewRegistry()

	meridian := NewMeridianAdapter(cfg.MeridianBaseURL, cfg.MeridianAPIKey, cfg.RequestTimeout)
	if err := registry.Register(Capability{
		Slug:                 "meridian-mutual",
		DisplayName:          "Meridian Mutual",
		SupportsDirectFiling: true,
		SupportsStatusSync:   true,
		RequiredFields:       []string{"policy_number", "cause_of_loss", "loss_description", "damage_areas"},
	}, meridian); err != nil {
		return nil, fmt.Errorf("failed to register meridian-mutual: %w", err)
	}

	pinnacle := NewPinnacleAdapter(cfg.PinnacleBaseURL, cfg.PinnacleAccountID, cfg.PinnacleToken, cfg.RequestTimeout)
	if err := registry.Register(Capability{
		Slug:               "pinnacle-property",
		DisplayName:        "Pinnacle Property & Casualty",
		SupportsStatusSync: true,
	}, pinnacle); err != nil {
		return nil, fmt.Errorf("failed to register pinnacle-property: %w", err)
	}

	// Heartland handles everything over the phone. Registered so the UI can
	// still show the carrier and so the gate answers instead of "unknown".
	if err := registry.Register(Capability{
		Slug:        "heartland-underwriters",
		DisplayName: "Heartland Underwriters",
	}, nil); err != nil {
		return nil, fmt.Errorf("failed to register heartland-underwriters: %w", err)
	}

	return registry, nil
}
