package carrier

import (
	"fmt"
	"sort"

	"claims-service/internal/models"
)

// Capability describes what a registered carrier supports. The UI reads this
// to decide whether to offer file/sync actions at all.
type Capability struct {
	Slug                 string   `json:"slug"`
	DisplayName          string   `json:"display_name"`
	SupportsDirectFiling bool     `json:"supports_direct_filing"`
	SupportsStatusSync   bool     `json:"supports_status_sync"`
	RequiredFields       []string `json:"required_fields,omitempty"`
}

type entry struct {
	capability Capability
	adapter    Adapter
}

// Registry maps carrier slugs to capabilities and adapters. Built once at
// startup and injected; never a mutable package global.
type Registry struct {
	entries map[string]entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a carrier. The adapter may be nil for carriers that support
// neither operation (manual-process carriers still need display metadata).
func (r *Registry) Register(cap Capability, adapter Adapter) error {
	if cap.Slug == "" {
		return fmt.Errorf("carrier capability requires a slug")
	}
	if _, dup := r.entries[cap.Slug]; dup {
		return fmt.Errorf("carrier %s registered twice", cap.Slug)
	}
	if adapter == nil && (cap.SupportsDirectFiling || cap.SupportsStatusSync) {
		return fmt.Errorf("carrier %s declares capabilities but has no adapter", cap.Slug)
	}
	r.entries[cap.Slug] = entry{capability: cap, adapter: adapter}
	return nil
}

// Capability returns the descriptor for a carrier slug.
func (r *Registry) Capability(slug string) (Capability, error) {
	e, ok := r.entries[slug]
	if !ok {
		return Capability{}, fmt.Errorf("%w: %s", models.ErrCarrierUnknown, slug)
	}
	return e.capability, nil
}

// List returns all capabilities sorted by display name.
func (r *Registry) List() []Capability {
	out := make([]Capability, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.capability)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out
}

// FilingAdapter resolves the adapter for direct filing, failing fast with a
// typed error before any network work when the carrier does not support it.
func (r *Registry) FilingAdapter(slug string) (Adapter, error) {
	e, ok := r.entries[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrCarrierUnknown, slug)
	}
	if !e.capability.SupportsDirectFiling {
		return nil, &models.UnsupportedOperationError{Carrier: slug, Operation: "direct filing"}
	}
	return e.adapter, nil
}

// SyncAdapter resolves the adapter for status sync under the same gate.
func (r *Registry) SyncAdapter(slug string) (Adapter, error) {
	e, ok := r.entries[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrCarrierUnknown, slug)
	}
	if !e.capability.SupportsStatusSync {
		return nil, &models.UnsupportedOperationError{Carrier: slug, Operation: "status sync"}
	}
	return e.adapter, nil
}
