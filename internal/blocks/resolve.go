// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blocks

import (
	"tailorcms/internal/personalization"
)

// personalizationKey is the reserved key inside a block's data payload
// that holds its PersonalizationSpec. It is stripped from the effective
// data before template decoding.
const personalizationKey = "personalization"

// PersonalizationSpec is the optional per-block personalization config:
// a master switch and a map from industry name to a partial payload with
// the same shape as the block's default data.
type PersonalizationSpec struct {
	Enabled          bool
	IndustryVariants map[string]map[string]any
}

// personalizationFrom extracts the spec from a raw data payload. Returns
// nil when absent or unparseable — both mean "not personalized".
func personalizationFrom(data map[string]any) *PersonalizationSpec {
	raw, ok := data[personalizationKey].(map[string]any)
	if !ok {
		return nil
	}

	spec := &PersonalizationSpec{}
	spec.Enabled, _ = raw["enabled"].(bool)

	if variants, ok := raw["industryVariants"].(map[string]any); ok {
		spec.IndustryVariants = make(map[string]map[string]any, len(variants))
		for industry, v := range variants {
			if m, ok := v.(map[string]any); ok {
				spec.IndustryVariants[industry] = m
			}
		}
	}
	return spec
}

// Resolve computes the effective data to render for a block given the
// visitor's session state. It never fails: every degraded input falls
// back to the block's default data.
//
// Fallback order:
//  1. personalization absent or disabled → default data
//  2. no industry signal in the session  → default data
//  3. no variant authored for the visitor's industry → default data
//  4. otherwise the variant is shallow-merged over the default: variant
//     keys win, keys only in the default survive.
//
// A variant counts as "present" when its key set is non-empty, even if
// every value is an empty string or array. An authored-but-blank variant
// therefore suppresses the default — see TestResolveEmptyValuedVariant.
func Resolve(b Block, state personalization.State) map[string]any {
	spec := personalizationFrom(b.Data)
	if spec == nil || !spec.Enabled {
		return b.Data
	}

	if state.Industry == "" {
		return b.Data
	}

	variant, ok := spec.IndustryVariants[state.Industry]
	if !ok || len(variant) == 0 {
		return b.Data
	}

	merged := make(map[string]any, len(b.Data)+len(variant))
	for k, v := range b.Data {
		merged[k] = v
	}
	for k, v := range variant {
		merged[k] = v
	}
	return merged
}

// effectiveData is Resolve with the personalization config stripped, so
// the reserved key never reaches payload decoding or templates.
func effectiveData(b Block, state personalization.State) map[string]any {
	eff := Resolve(b, state)
	if _, ok := eff[personalizationKey]; !ok {
		return eff
	}
	clean := make(map[string]any, len(eff)-1)
	for k, v := range eff {
		if k == personalizationKey {
			continue
		}
		clean[k] = v
	}
	return clean
}
