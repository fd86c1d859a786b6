package checkout

import (
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-checkoutform/pkg/model"
)

var optionalMarker = regexp.MustCompile(`(?i)(\s|&nbsp;)?<span class="optional">.*?</span>`)

// StripOptionalMarker removes the host's "(optional)" marker, together with a
// single preceding space or &nbsp;, from the label of a non-required field.
// Required field labels are returned unchanged.
func StripOptionalMarker(label string, required bool) string {
	if required || label == "" {
		return label
	}
	return optionalMarker.ReplaceAllString(label, "")
}

// FilterLabel strips the optional marker and sanitizes what is left so host
// supplied labels can be rendered as markup.
func FilterLabel(label string, required bool) string {
	return SanitizeMarkup(StripOptionalMarker(label, required))
}

// FilterFieldArgs applies FilterLabel to a host field definition.
func FilterFieldArgs(field model.Field) model.Field {
	field.Label = FilterLabel(field.Label, field.Required)
	return field
}

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy
)

// SanitizeMarkup keeps the small set of inline elements labels and hints use.
func SanitizeMarkup(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return strings.TrimSpace(labelSanitizer().Sanitize(raw))
}

func labelSanitizer() *bluemonday.Policy {
	labelPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("span", "abbr", "strong", "em", "b", "i", "small", "br")
		policy.AllowAttrs("class").OnElements("span", "abbr")
		policy.AllowAttrs("title").OnElements("abbr")
		labelPolicy = policy
	})
	return labelPolicy
}
