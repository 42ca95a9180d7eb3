package sanitizer

func NormalizeStringSlice(items []string, normalizer func(string) string) []string {
	if len(items) == 0 {
		return []string{}
	}

	seen := make(map[string]bool)
	result := make([]string, 0, len(items))

	for _, item := range items {
		normalized := normalizer(item)

		if normalized == "" {
			continue
		}

		if seen[normalized] {
			continue
		}

		seen[normalized] = true
		result = append(result, normalized)
	}

	return result
}

// NormalizeTags trims, lowercases and de-duplicates product and service tags.
func NormalizeTags(tags []string) []string {
	return NormalizeStringSlice(tags, func(s string) string {
		return NormalizeEmail(TrimAndNormalize(s))
	})
}

// NormalizeList trims and de-duplicates list fields such as features, ingredients and colors.
func NormalizeList(items []string) []string {
	return NormalizeStringSlice(items, TrimAndNormalize)
}
