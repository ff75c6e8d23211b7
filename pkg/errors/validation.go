package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds layer and group identifiers.
const maxIDLength = 256

// validateID applies the rules shared by layer and group identifiers:
// non-empty, bounded length, no control characters.
func validateID(kind string, code Code, id string) error {
	if id == "" {
		return New(code, "%s id cannot be empty", kind)
	}
	if len(id) > maxIDLength {
		return New(code, "%s id too long (max %d characters)", kind, maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(code, "%s id contains invalid control characters", kind)
		}
	}
	return nil
}

// ValidateLayerID validates a layer identifier received from a user.
// The group package itself accepts arbitrary ids; this check is applied at the
// CLI and HTTP boundaries only.
func ValidateLayerID(id string) error {
	return validateID("layer", ErrCodeInvalidLayerID, id)
}

// ValidateGroupID validates a group identifier. Unlike layer ids, group ids
// are also checked by the group package, since "" means ungrouped.
func ValidateGroupID(id string) error {
	return validateID("group", ErrCodeInvalidGroupID, id)
}

// documentNameRegex matches names safe for file names, Redis keys and Mongo ids.
var documentNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateDocumentName validates a style document name used as a store key.
// It rejects names that could be used for path traversal.
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "document name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "document name too long (max 128 characters)")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "document name cannot contain path traversal sequences (..)")
	}
	if !documentNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid document name: %q", name)
	}
	return nil
}
