// Package anonymizer applies compliance transformations to sensitive fields
// before data is persisted or displayed. It is a defense-in-depth layer:
// transforms never fail, malformed input passes through untouched, and every
// transform is idempotent under a fixed configuration.
package anonymizer

import (
	"regexp"
	"strings"

	"flowpulse/internal/model"
	"flowpulse/pkg/utils"

	"github.com/duke-git/lancet/v2/cryptor"
)

// Sensitive data types.
const (
	TypeEmail    = "email"
	TypePhone    = "phone"
	TypeDocument = "document"
	TypeNotes    = "notes"
)

// hashPrefix marks values already transformed at the full level so a second
// pass leaves them untouched.
const hashPrefix = "anon:"

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)*\.[A-Za-z]{2,}`)
	// Phone numbers with at least eight digits, optional country/area parts.
	phonePattern = regexp.MustCompile(`\+?\d{0,3}[\s.-]?\(?\d{2,3}\)?[\s.-]?\d{4,5}[\s.-]?\d{4}`)
	// National document IDs in their punctuated forms (CPF, CNPJ).
	documentPattern = regexp.MustCompile(`\d{3}\.\d{3}\.\d{3}-\d{2}|\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}`)
)

// Redacted placeholders used when format preservation is disabled.
var redacted = map[string]string{
	TypeEmail:    "[redacted email]",
	TypePhone:    "[redacted phone]",
	TypeDocument: "[redacted document]",
	TypeNotes:    "[redacted]",
}

// Options configures one Anonymizer instance.
type Options struct {
	Level          string
	PreserveFormat bool
	HashSalt       string
	Fields         []string
}

// Anonymizer transforms sensitive fields per its configuration.
type Anonymizer struct {
	level          string
	preserveFormat bool
	hashSalt       string
	fields         map[string]bool
}

// New builds an Anonymizer. Unknown levels degrade to none; an empty field
// list enables every known sensitive type.
func New(opts Options) *Anonymizer {
	a := &Anonymizer{
		level:          opts.Level,
		preserveFormat: opts.PreserveFormat,
		hashSalt:       opts.HashSalt,
		fields:         make(map[string]bool),
	}
	switch a.level {
	case model.AnonLevelNone, model.AnonLevelPartial, model.AnonLevelFull:
	default:
		a.level = model.AnonLevelNone
	}
	if len(opts.Fields) == 0 {
		opts.Fields = []string{TypeEmail, TypePhone, TypeDocument, TypeNotes}
	}
	for _, f := range opts.Fields {
		a.fields[f] = true
	}
	return a
}

// FromModel builds an Anonymizer from the persisted configuration row.
func FromModel(cfg *model.AnonymizationConfig) *Anonymizer {
	var fields []string
	if cfg.Fields != "" {
		// Malformed field lists fall back to the default set.
		fields, _ = utils.FromJSON[[]string](cfg.Fields)
	}
	return New(Options{
		Level:          cfg.Level,
		PreserveFormat: cfg.PreserveFormat,
		HashSalt:       cfg.HashSalt,
		Fields:         fields,
	})
}

// Level returns the configured anonymization level.
func (a *Anonymizer) Level() string {
	return a.level
}

// AnonymizeObject walks an arbitrary decoded JSON graph and transforms
// sensitive fields. level overrides the configured level when non-empty.
// Unrecognized shapes pass through untouched.
func (a *Anonymizer) AnonymizeObject(data any, level string) any {
	if level == "" {
		level = a.level
	}
	if level == model.AnonLevelNone {
		return data
	}

	switch v := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			if s, ok := val.(string); ok {
				if t := a.fieldType(key); t != "" {
					out[key] = a.transform(t, s, level)
					continue
				}
				out[key] = a.sanitizeText(s, level)
				continue
			}
			out[key] = a.AnonymizeObject(val, level)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = a.AnonymizeObject(item, level)
		}
		return out
	case string:
		return a.sanitizeText(v, level)
	default:
		return data
	}
}

// AnonymizeJSON transforms a serialized JSON payload in place. Invalid JSON
// is returned unchanged.
func (a *Anonymizer) AnonymizeJSON(raw string) string {
	if raw == "" {
		return raw
	}
	var data any
	if err := utils.UnmarshalString(raw, &data); err != nil {
		return raw
	}
	out, err := utils.ToJSON(a.AnonymizeObject(data, ""))
	if err != nil {
		return raw
	}
	return out
}

// ContainsSensitiveData reports whether text matches a sensitive pattern.
// The text is never mutated.
func (a *Anonymizer) ContainsSensitiveData(text string) bool {
	if a.fields[TypeEmail] && emailPattern.MatchString(text) {
		return true
	}
	if a.fields[TypeDocument] && documentPattern.MatchString(text) {
		return true
	}
	if a.fields[TypePhone] && phonePattern.MatchString(text) {
		return true
	}
	return false
}

// AnonymizeExecution transforms the sensitive fields of one execution record:
// the input/output payloads and the error message.
func (a *Anonymizer) AnonymizeExecution(exec *model.WorkflowExecution) {
	if exec == nil || a.level == model.AnonLevelNone {
		return
	}
	exec.InputData = a.AnonymizeJSON(exec.InputData)
	exec.OutputData = a.AnonymizeJSON(exec.OutputData)
	exec.ErrorMessage = a.sanitizeText(exec.ErrorMessage, a.level)
}

// AnonymizeLog transforms the sensitive fields of one log entry.
func (a *Anonymizer) AnonymizeLog(entry *model.WorkflowLog) {
	if entry == nil || a.level == model.AnonLevelNone {
		return
	}
	entry.Message = a.sanitizeText(entry.Message, a.level)
	entry.Data = a.AnonymizeJSON(entry.Data)
}

// fieldType classifies a field name against the enabled sensitive types.
func (a *Anonymizer) fieldType(key string) string {
	k := strings.ToLower(key)
	switch {
	case a.fields[TypeEmail] && strings.Contains(k, "email"):
		return TypeEmail
	case a.fields[TypePhone] && (strings.Contains(k, "phone") || strings.Contains(k, "telefone") || strings.Contains(k, "mobile") || strings.Contains(k, "whatsapp")):
		return TypePhone
	case a.fields[TypeDocument] && (strings.Contains(k, "document") || strings.Contains(k, "cpf") || strings.Contains(k, "cnpj") || strings.Contains(k, "tax_id") || strings.Contains(k, "taxid")):
		return TypeDocument
	case a.fields[TypeNotes] && (strings.Contains(k, "notes") || strings.Contains(k, "comment") || strings.Contains(k, "observation") || strings.Contains(k, "remarks")):
		return TypeNotes
	}
	return ""
}

// transform applies the per-type transform for one value.
func (a *Anonymizer) transform(sensType, value, level string) string {
	if value == "" {
		return value
	}
	switch level {
	case model.AnonLevelFull:
		return a.hashValue(value)
	case model.AnonLevelPartial:
		if !a.preserveFormat {
			return redacted[sensType]
		}
		switch sensType {
		case TypeEmail:
			return maskEmail(value)
		case TypePhone:
			return maskDigits(value, 4)
		case TypeDocument:
			return maskDigits(value, 2)
		default:
			return a.sanitizeText(value, level)
		}
	}
	return value
}

// sanitizeText rewrites sensitive spans embedded in free text. Masked and
// hashed spans no longer match the patterns, so a second pass is a no-op.
func (a *Anonymizer) sanitizeText(text, level string) string {
	if text == "" || level == model.AnonLevelNone {
		return text
	}
	if a.fields[TypeEmail] {
		text = emailPattern.ReplaceAllStringFunc(text, func(m string) string {
			return a.spanTransform(TypeEmail, m, level)
		})
	}
	if a.fields[TypeDocument] {
		text = documentPattern.ReplaceAllStringFunc(text, func(m string) string {
			return a.spanTransform(TypeDocument, m, level)
		})
	}
	if a.fields[TypePhone] {
		text = phonePattern.ReplaceAllStringFunc(text, func(m string) string {
			return a.spanTransform(TypePhone, m, level)
		})
	}
	return text
}

func (a *Anonymizer) spanTransform(sensType, span, level string) string {
	if level == model.AnonLevelFull {
		return a.hashValue(span)
	}
	if !a.preserveFormat {
		return redacted[sensType]
	}
	switch sensType {
	case TypeEmail:
		return maskEmail(span)
	case TypePhone:
		return maskDigits(span, 4)
	case TypeDocument:
		return maskDigits(span, 2)
	}
	return span
}

// hashValue produces a deterministic, irreversible token. Already-hashed
// values are returned as-is, and digits in the token are shifted into
// letters so it can never re-match a numeric pattern on a later pass.
func (a *Anonymizer) hashValue(value string) string {
	if strings.HasPrefix(value, hashPrefix) {
		return value
	}
	sum := cryptor.Sha256(a.hashSalt + value)[:16]
	return hashPrefix + strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return 'g' + (r - '0')
		}
		return r
	}, sum)
}

// maskEmail keeps the first character of the local part and of the domain
// plus the top-level domain. Applying it to its own output is a no-op.
func maskEmail(value string) string {
	at := strings.LastIndex(value, "@")
	if at < 0 {
		return maskDigits(value, 0)
	}
	local, domain := value[:at], value[at+1:]

	masked := firstChar(local) + "***"

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return masked + "@" + firstChar(domain) + "***"
	}
	tld := labels[len(labels)-1]
	return masked + "@" + firstChar(labels[0]) + "***." + tld
}

func firstChar(s string) string {
	for _, r := range s {
		return string(r)
	}
	return "*"
}

// maskDigits replaces every digit with '*' except the trailing keep digits,
// preserving punctuation and spacing. Idempotent: the kept digits are the
// only digits left, so they survive every subsequent pass.
func maskDigits(value string, keep int) string {
	digits := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	toMask := digits - keep
	if toMask <= 0 {
		return value
	}

	var b strings.Builder
	b.Grow(len(value))
	masked := 0
	for _, r := range value {
		if r >= '0' && r <= '9' && masked < toMask {
			b.WriteRune('*')
			masked++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
