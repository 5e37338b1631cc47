// Package section decodes the agent payloads into typed records.
//
// Each monitored Entra domain produces one JSON document per collection
// cycle. The list-shaped domains are keyed by display name, which Entra
// does not guarantee to be unique, so parsers synthesize a unique key by
// appending the last characters of the object ID on collision. Keys are
// stable within one parse and map one-to-one to records.
package section

// uniqueName returns name unless it was already handed out in this
// parse, in which case the tail of the object ID is appended. The tail
// grows until the suffixed key is itself unseen, ending at the full
// object ID, so two records never collapse onto one key. The seen set
// records every returned key.
func uniqueName(seen map[string]bool, name, objectID string) string {
	if !seen[name] {
		seen[name] = true
		return name
	}
	for n := 4; n < len(objectID); n += 4 {
		key := name + " " + idTail(objectID, n)
		if !seen[key] {
			seen[key] = true
			return key
		}
	}
	key := name + " " + objectID
	seen[key] = true
	return key
}

// idTail returns the last n characters of an object ID.
func idTail(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[len(id)-n:]
}
