package runtime

import (
	"log/slog"

	"github.com/reelvm/reel/pkg/domain"
)

// Bindings is the typed, id-addressed parameter set of one instance. It is
// always a private clone: bindings are never aliased across instances.
type Bindings struct {
	params []domain.Param
	logger *slog.Logger
}

// NewBindings clones the graph's parameter defaults into a fresh binding set.
func NewBindings(defs []domain.ParamDef, logger *slog.Logger) *Bindings {
	b := &Bindings{
		params: make([]domain.Param, len(defs)),
		logger: logger,
	}
	for i, d := range defs {
		b.params[i] = domain.Param{ID: d.ID, Type: d.Type, Value: d.Default}
	}
	return b
}

// Apply merges overrides by id, performing a typed copy. Unknown ids are
// ignored for forward compatibility; a type mismatch is a no-op with a
// warning, keeping the default. Apply is idempotent for identical input.
func (b *Bindings) Apply(overrides []domain.Override) {
	for _, ov := range overrides {
		idx := b.index(ov.ID)
		if idx < 0 {
			continue
		}
		slot := &b.params[idx]
		if !ov.Value.IsZero() && ov.Value.Type() != slot.Type {
			b.logger.Warn("parameter override type mismatch, keeping default",
				"param", ov.ID,
				"declared", slot.Type,
				"got", ov.Value.Type(),
			)
			continue
		}
		slot.Value = ov.Value
	}
}

// Reset restores every binding to the graph default.
func (b *Bindings) Reset(defs []domain.ParamDef) {
	for i := range b.params {
		for _, d := range defs {
			if d.ID == b.params[i].ID {
				b.params[i].Value = d.Default
				break
			}
		}
	}
}

// Get returns the bound value for an id.
func (b *Bindings) Get(id string) (domain.Value, bool) {
	idx := b.index(id)
	if idx < 0 {
		return domain.Value{}, false
	}
	return b.params[idx].Value, true
}

// Env exposes the bindings as native values for expression environments.
func (b *Bindings) Env() map[string]any {
	env := make(map[string]any, len(b.params))
	for _, p := range b.params {
		env[p.ID] = p.Value.Native()
	}
	return env
}

// Snapshot renders every binding in canonical string encoding.
func (b *Bindings) Snapshot() []domain.ParamSnapshot {
	out := make([]domain.ParamSnapshot, len(b.params))
	for i, p := range b.params {
		out[i] = domain.ParamSnapshot{ID: p.ID, Type: p.Type, Encoded: p.Value.Encode()}
	}
	return out
}

// Restore decodes snapshot values back into the binding set. Unknown ids
// and mismatched types follow the same forgiving rules as Apply.
func (b *Bindings) Restore(snaps []domain.ParamSnapshot) {
	overrides := make([]domain.Override, 0, len(snaps))
	for _, s := range snaps {
		v, err := domain.ParseValue(s.Type, s.Encoded)
		if err != nil {
			b.logger.Warn("failed to decode saved parameter, keeping default",
				"param", s.ID, "err", err)
			continue
		}
		overrides = append(overrides, domain.Override{ID: s.ID, Value: v})
	}
	b.Apply(overrides)
}

func (b *Bindings) index(id string) int {
	for i := range b.params {
		if b.params[i].ID == id {
			return i
		}
	}
	return -1
}
