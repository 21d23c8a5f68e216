package waypoint

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxTargetSize is the largest destination accepted, in bytes.
	DefaultMaxTargetSize = 1024
	// EnvMaxTargetSize is the environment variable to override the default.
	EnvMaxTargetSize = "WAYPOINT_MAX_TARGET_SIZE"
)

var (
	ErrTargetTooLarge = errors.New("target exceeds maximum allowed size")
	ErrInvalidTarget  = errors.New("invalid target")
)

// SanitizeTarget validates a destination coming from outside the process. It rejects
// oversized and non UTF-8 input, strips control characters and surrounding space, and
// rejects what is left if it is empty.
func SanitizeTarget(target string) (string, error) {
	limit := maxTargetSize()
	if len(target) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTargetTooLarge, len(target), limit)
	}
	if !utf8.ValidString(target) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrInvalidTarget)
	}

	clean := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, target)
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidTarget)
	}
	return clean, nil
}

func maxTargetSize() int {
	if val := os.Getenv(EnvMaxTargetSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxTargetSize
}
