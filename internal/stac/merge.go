// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package stac

// MergePatch applies an RFC 7386 JSON merge patch to a document: objects
// merge member-wise, explicit nulls delete, and every other value
// replaces wholesale. The target is modified in place and returned.
func MergePatch(target, patch Document) Document {
	merged := mergeValue(map[string]interface{}(target), map[string]interface{}(patch))
	if m, ok := merged.(map[string]interface{}); ok {
		return Document(m)
	}
	return target
}

func mergeValue(target, patch interface{}) interface{} {
	patchMap, ok := patch.(map[string]interface{})
	if !ok {
		return patch
	}
	targetMap, ok := target.(map[string]interface{})
	if !ok {
		targetMap = make(map[string]interface{}, len(patchMap))
	}
	for key, value := range patchMap {
		if value == nil {
			delete(targetMap, key)
			continue
		}
		targetMap[key] = mergeValue(targetMap[key], value)
	}
	return targetMap
}
