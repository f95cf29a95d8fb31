package settings

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/typetrack/internal/model"
)

// Setting keys, matching the names the overlay has always stored.
const (
	KeyTimeout         = "timeout"
	KeyPosition        = "popupPosition"
	KeyEnabled         = "extensionEnabled"
	KeyMinChars        = "minChars"
	KeyFontSize        = "fontSize"
	KeyBackgroundColor = "backgroundColor"
	KeyOpacity         = "opacity"
	KeyTextColor       = "textColor"
)

var (
	// ErrUnknownKey is returned for keys that are not settings.
	ErrUnknownKey = errors.New("unknown setting")
	// ErrInvalidValue is returned when a value does not parse for its key.
	ErrInvalidValue = errors.New("invalid setting value")
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type field struct {
	// apply parses raw into s and returns the canonical text form.
	apply  func(s *model.Settings, raw string) (string, error)
	format func(s model.Settings) string
}

var fields = map[string]field{
	KeyTimeout: {
		apply: func(s *model.Settings, raw string) (string, error) {
			ms, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || ms <= 0 {
				return "", fmt.Errorf("%w: %s must be a positive number of milliseconds", ErrInvalidValue, KeyTimeout)
			}
			s.Timeout = time.Duration(ms) * time.Millisecond
			return strconv.Itoa(ms), nil
		},
		format: func(s model.Settings) string { return strconv.FormatInt(s.Timeout.Milliseconds(), 10) },
	},
	KeyPosition: {
		apply: func(s *model.Settings, raw string) (string, error) {
			mode, ok := model.ParseAnchorMode(raw)
			if !ok {
				return "", fmt.Errorf("%w: %s must be one of %s", ErrInvalidValue, KeyPosition, anchorList())
			}
			s.Anchor = mode
			return string(mode), nil
		},
		format: func(s model.Settings) string { return string(s.Anchor) },
	},
	KeyEnabled: {
		apply: func(s *model.Settings, raw string) (string, error) {
			v, err := strconv.ParseBool(strings.TrimSpace(raw))
			if err != nil {
				return "", fmt.Errorf("%w: %s must be true or false", ErrInvalidValue, KeyEnabled)
			}
			s.Enabled = v
			return strconv.FormatBool(v), nil
		},
		format: func(s model.Settings) string { return strconv.FormatBool(s.Enabled) },
	},
	KeyMinChars: {
		apply: func(s *model.Settings, raw string) (string, error) {
			v, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || v < 1 {
				return "", fmt.Errorf("%w: %s must be >= 1", ErrInvalidValue, KeyMinChars)
			}
			s.MinChars = v
			return strconv.Itoa(v), nil
		},
		format: func(s model.Settings) string { return strconv.Itoa(s.MinChars) },
	},
	KeyFontSize: {
		apply: func(s *model.Settings, raw string) (string, error) {
			v, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || v <= 0 {
				return "", fmt.Errorf("%w: %s must be > 0", ErrInvalidValue, KeyFontSize)
			}
			s.FontSize = v
			return strconv.Itoa(v), nil
		},
		format: func(s model.Settings) string { return strconv.Itoa(s.FontSize) },
	},
	KeyBackgroundColor: {
		apply: func(s *model.Settings, raw string) (string, error) {
			raw = strings.TrimSpace(raw)
			if !hexColor.MatchString(raw) {
				return "", fmt.Errorf("%w: %s must look like #RRGGBB", ErrInvalidValue, KeyBackgroundColor)
			}
			s.BackgroundColor = raw
			return raw, nil
		},
		format: func(s model.Settings) string { return s.BackgroundColor },
	},
	KeyOpacity: {
		apply: func(s *model.Settings, raw string) (string, error) {
			v, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || v < 0 || v > 100 {
				return "", fmt.Errorf("%w: %s must be between 0 and 100", ErrInvalidValue, KeyOpacity)
			}
			s.Opacity = v
			return strconv.Itoa(v), nil
		},
		format: func(s model.Settings) string { return strconv.Itoa(s.Opacity) },
	},
	KeyTextColor: {
		apply: func(s *model.Settings, raw string) (string, error) {
			raw = strings.TrimSpace(raw)
			if !hexColor.MatchString(raw) {
				return "", fmt.Errorf("%w: %s must look like #RRGGBB", ErrInvalidValue, KeyTextColor)
			}
			s.TextColor = raw
			return raw, nil
		},
		format: func(s model.Settings) string { return s.TextColor },
	},
}

// Keys returns the setting keys in stable order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Normalize validates raw for key and returns its canonical form.
func Normalize(key, raw string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	scratch := model.DefaultSettings()
	return f.apply(&scratch, raw)
}

// Format renders a snapshot as raw key values.
func Format(s model.Settings) map[string]string {
	out := make(map[string]string, len(fields))
	for key, f := range fields {
		out[key] = f.format(s)
	}
	return out
}

// parse builds a snapshot from defaults plus raw values. Unknown keys are
// skipped; invalid values keep the default and are reported.
func parse(values map[string]string) (model.Settings, map[string]error) {
	s := model.DefaultSettings()
	var problems map[string]error
	for key, raw := range values {
		f, ok := fields[key]
		if !ok {
			continue
		}
		if _, err := f.apply(&s, raw); err != nil {
			if problems == nil {
				problems = map[string]error{}
			}
			problems[key] = err
		}
	}
	return s, problems
}

func anchorList() string {
	names := make([]string, len(model.AnchorModes))
	for i, mode := range model.AnchorModes {
		names[i] = string(mode)
	}
	return strings.Join(names, ", ")
}
