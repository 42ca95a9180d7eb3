package view

import (
	"html/template"
	"slices"
	"strings"
	"time"

	"petcare/pkg/model"
	"petcare/pkg/sanitizer"
)

func Funcs(currencySymbol string) template.FuncMap {
	return template.FuncMap{
		"formatDate":      formatDate,
		"formatDateInput": formatDateInput,
		"formatDateTime":  formatDateTime,
		"money": func(amount float64) string {
			return model.FormatMoney(currencySymbol, amount)
		},
		"currency": func() string { return currencySymbol },
		"title":    func(s string) string { return sanitizer.NormalizeTitle(strings.ReplaceAll(s, "-", " ")) },
		"contains": contains,
		"add":      func(a, b int) int { return a + b },
		"seq":      seq,
		"join":     strings.Join,
		"lower":    strings.ToLower,
		"duration": model.FormatDuration,
		"slots":    func() []string { return model.Slots },
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("Jan 2, 2006")
}

func formatDateInput(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(model.DateLayout)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("Jan 2, 2006 15:04")
}

func contains(items []string, item string) bool {
	return slices.Contains(items, item)
}

// seq yields 0..n-1 for range loops such as star ratings.
func seq(n int) []int {
	if n < 0 {
		n = 0
	}
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
