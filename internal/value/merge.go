package value

import "sort"

// MergeShallow overlays override's top-level keys onto base. Keys present in
// override replace base entries wholesale; nothing is merged below the first
// level. Neither argument is modified. A non-mapping override yields a clone
// of base.
func MergeShallow(base, override Value) Value {
	out := base.Clone()
	if !out.IsMapping() {
		out = Mapping()
	}
	if !override.IsMapping() {
		return out
	}
	for _, k := range override.m.keys {
		out.Set(k, override.m.fields[k].Clone())
	}
	return out
}

// DeepMerge overlays override onto base recursively. When both sides of a key
// are mappings they are merged key by key; any other combination is resolved
// in favour of override. Neither argument is modified.
func DeepMerge(base, override Value) Value {
	if !base.IsMapping() || !override.IsMapping() {
		return override.Clone()
	}
	out := base.Clone()
	for _, k := range override.m.keys {
		incoming := override.m.fields[k]
		if existing, ok := out.m.fields[k]; ok && existing.IsMapping() && incoming.IsMapping() {
			out.Set(k, DeepMerge(existing, incoming))
			continue
		}
		out.Set(k, incoming.Clone())
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
