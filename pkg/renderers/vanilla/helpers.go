package vanilla

import (
	"strings"
)

// controlID keeps the host's convention of using the field name as the id
// so existing selectors keep working.
func controlID(name string) string {
	return strings.TrimSpace(name)
}

// headerClass derives "ccif-person-info-header" from "person-info-box".
func headerClass(sectionID string) string {
	trimmed := strings.TrimSuffix(strings.TrimSpace(sectionID), "-box")
	if trimmed == "" {
		return ""
	}
	return "ccif-" + trimmed + "-header"
}

func joinClasses(groups ...[]string) string {
	seen := make(map[string]struct{})
	var keep []string
	for _, group := range groups {
		for _, value := range group {
			for _, token := range strings.Fields(value) {
				if _, ok := seen[token]; ok {
					continue
				}
				seen[token] = struct{}{}
				keep = append(keep, token)
			}
		}
	}
	return strings.Join(keep, " ")
}
