package config

import (
	"dario.cat/mergo"
)

// MergeParameters deep-merges layers in precedence order — later layers
// override earlier ones — matching the action runtime's input-collection
// rule (workflow defaults < node overrides < runtime inputs) and the
// resource manager's pool-policy overlay rule. A nil layer is skipped.
// The returned map is always a fresh copy; none of the input layers are
// mutated.
func MergeParameters(layers ...map[string]any) (map[string]any, error) {
	// mergo keeps a source's nested maps by reference and merges later
	// layers into them, so each layer is cloned before it is merged.
	var clone func(m map[string]any) map[string]any
	clone = func(m map[string]any) map[string]any {
		out := make(map[string]any, len(m))
		for k, v := range m {
			if nested, ok := v.(map[string]any); ok {
				v = clone(nested)
			}
			out[k] = v
		}
		return out
	}

	result := map[string]any{}
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		if err := mergo.Merge(&result, clone(layer), mergo.WithOverride); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// MergeStruct deep-merges src into dst, with src's non-zero fields
// overriding dst's, and returns dst for chaining. Used for merging
// typed policy overlays (e.g. a per-pool override on top of a
// deployment-wide default) where a plain map isn't expressive enough.
func MergeStruct[T any](dst *T, src T) (*T, error) {
	if err := mergo.Merge(dst, src, mergo.WithOverride); err != nil {
		return nil, err
	}
	return dst, nil
}
