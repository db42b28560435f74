package conversation

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"frontdesk/models"
	"frontdesk/services/intelligence"
	"frontdesk/utils"

	"go.uber.org/zap"
)

// FieldExtractor owns the merge, validation and completeness rules for
// collected user fields. The raw extraction is delegated to the language
// model; nothing it returns is trusted until it passes the validator and the
// merge policy here, both of which are deterministic.
type FieldExtractor struct {
	Model intelligence.Client
}

// Extract runs extraction for the tenant's still-missing fields and merges
// the result into collected. A newly extracted value only overwrites when
// non-empty; fields never un-collect. Returns the merged map, the remaining
// missing field names, and whether collection is complete.
func (x *FieldExtractor) Extract(ctx context.Context, tenant *models.Tenant, history []models.Turn, collected map[string]string) (map[string]string, []string, bool, error) {
	merged := make(map[string]string, len(collected))
	for k, v := range collected {
		merged[k] = v
	}

	missing := missingFields(tenant, merged)
	if len(missing) == 0 {
		return merged, nil, true, nil
	}

	extracted, err := x.Model.ExtractFields(ctx, missing, history)
	if err != nil {
		// Extraction is best-effort per turn; the conversation continues and
		// the next turn retries naturally.
		utils.GetLogger().Warn("field extraction failed", zap.Error(err))
		extracted = nil
	}

	for _, spec := range missing {
		raw, ok := extracted[spec.Name]
		if !ok {
			continue
		}
		value := cleanFieldValue(spec, raw)
		if value == "" {
			continue
		}
		merged[spec.Name] = value
	}

	remaining := missingFields(tenant, merged)
	names := make([]string, 0, len(remaining))
	for _, spec := range remaining {
		names = append(names, spec.Name)
	}
	return merged, names, len(remaining) == 0, nil
}

func missingFields(tenant *models.Tenant, collected map[string]string) []models.FieldSpec {
	var missing []models.FieldSpec
	for _, spec := range tenant.RequiredFields {
		if strings.TrimSpace(collected[spec.Name]) == "" {
			missing = append(missing, spec)
		}
	}
	return missing
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// cleanFieldValue validates and normalizes one extracted value. Returns ""
// when the value fails its validator, which keeps the field uncollected.
func cleanFieldValue(spec models.FieldSpec, raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}

	switch spec.Validator {
	case "email":
		value = strings.ToLower(value)
		if !emailPattern.MatchString(value) {
			return ""
		}
		return value
	case "phone":
		return normalizePhone(value)
	case "name":
		return normalizeName(value)
	default:
		return value
	}
}

// normalizePhone keeps digits only and ensures a country code, assuming +1
// when none was given. Rejects implausible lengths.
func normalizePhone(value string) string {
	hadPlus := strings.HasPrefix(strings.TrimSpace(value), "+")
	var digits strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 10 || len(d) > 13 {
		return ""
	}
	if !hadPlus && len(d) == 10 {
		d = "1" + d
	}
	return "+" + d
}

func normalizeName(value string) string {
	words := strings.Fields(value)
	if len(words) == 0 {
		return ""
	}
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
