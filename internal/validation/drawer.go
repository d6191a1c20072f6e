package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var drawerNameRegex = regexp.MustCompile(`^[a-z0-9-]{3,50}$`)

var reservedDrawerNames = map[string]struct{}{
	"admin":     {},
	"api":       {},
	"auth":      {},
	"drawers":   {},
	"users":     {},
	"posts":     {},
	"comments":  {},
	"reactions": {},
	"search":    {},
	"settings":  {},
	"metrics":   {},
	"health":    {},
	"login":     {},
	"register":  {},
}

// ValidateDrawerName validates drawer name format and reserved names. Drawer
// names double as URL path segments, so the character set stays narrow.
func ValidateDrawerName(name string) error {
	if !drawerNameRegex.MatchString(name) {
		return fmt.Errorf("name must be 3-50 characters and contain only lowercase letters, numbers, and hyphens")
	}

	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return fmt.Errorf("name cannot start or end with a hyphen")
	}

	if _, exists := reservedDrawerNames[name]; exists {
		return fmt.Errorf("name is reserved")
	}

	return nil
}

// ValidatePostTitle checks post title length bounds.
func ValidatePostTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return fmt.Errorf("title is required")
	}
	if len(trimmed) > 300 {
		return fmt.Errorf("title must not exceed 300 characters")
	}
	return nil
}

// ValidateCommentContent checks comment body bounds.
func ValidateCommentContent(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("content is required")
	}
	if len(trimmed) > 10000 {
		return fmt.Errorf("content must not exceed 10000 characters")
	}
	return nil
}
