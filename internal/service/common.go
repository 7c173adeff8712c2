package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

func validateNonNegativeFloat(name string, value float64) error {
	if value < 0 {
		return fmt.Errorf("%s must be >= 0", name)
	}
	return nil
}

func validatePositiveFloat(name string, value float64) error {
	if value <= 0 {
		return fmt.Errorf("%s must be > 0", name)
	}
	return nil
}

func normalizeKey(key string) string {
	return strings.TrimSpace(strings.ToLower(key))
}

func normalizeAPIURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

func isValidBarcode(code string) bool {
	return barcodePattern.MatchString(code)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
