package storage

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// CleanKey normalizes a relative object key and rejects keys that escape their root.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.TrimPrefix(strings.ReplaceAll(key, `\`, "/"), "/"))
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || strings.Contains(cleaned, "/../") {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return cleaned, nil
}

func CleanPrefix(prefix string) string {
	prefix = strings.TrimSpace(strings.TrimPrefix(prefix, "/"))
	if prefix == "" {
		return ""
	}
	prefix = path.Clean(prefix)
	if prefix == "." {
		return ""
	}
	return prefix
}

func SortByKey(objects []ObjectInfo) {
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
}
