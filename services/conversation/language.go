package conversation

import (
	"strings"
	"unicode"
)

// Keyword/character scoring keeps detection fast and deterministic; the
// language model is never consulted for this.
var spanishIndicators = map[string]bool{
	"hola": true, "gracias": true, "por": true, "favor": true, "quiero": true,
	"necesito": true, "cita": true, "buenos": true, "buenas": true, "dias": true,
	"tardes": true, "noches": true, "como": true, "estas": true, "usted": true,
	"para": true, "con": true, "una": true, "este": true, "esta": true,
	"puedo": true, "quisiera": true, "nombre": true, "correo": true,
	"telefono": true, "numero": true, "lunes": true, "martes": true,
	"miercoles": true, "jueves": true, "viernes": true, "manana": true,
	"si": true, "el": true, "la": true, "de": true, "que": true, "mi": true,
}

var englishIndicators = map[string]bool{
	"hello": true, "hi": true, "thanks": true, "thank": true, "please": true,
	"want": true, "need": true, "appointment": true, "good": true,
	"morning": true, "afternoon": true, "evening": true, "how": true,
	"are": true, "you": true, "for": true, "with": true, "can": true,
	"could": true, "would": true, "name": true, "email": true, "phone": true,
	"number": true, "monday": true, "tuesday": true, "wednesday": true,
	"thursday": true, "friday": true, "tomorrow": true, "yes": true,
	"the": true, "my": true, "is": true, "at": true, "what": true,
}

const spanishChars = "áéíóúñü¿¡"

// DetectLanguage classifies a message as "es" or "en". Defaults to English
// when nothing distinguishes the two.
func DetectLanguage(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return "en"
	}

	spanishCharCount := 0
	for _, r := range normalized {
		if strings.ContainsRune(spanishChars, r) {
			spanishCharCount++
		}
	}

	spanishScore := spanishCharCount * 2 // weight special chars
	englishScore := 0
	for _, word := range strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		if spanishIndicators[word] {
			spanishScore++
		}
		if englishIndicators[word] {
			englishScore++
		}
	}

	switch {
	case spanishScore > englishScore:
		return "es"
	case englishScore > spanishScore:
		return "en"
	case spanishCharCount > 0:
		return "es"
	default:
		return "en"
	}
}

// ResolveLanguage applies session stickiness: once a language is established,
// a short message (under three words) never changes it.
func ResolveLanguage(sessionLanguage, message string) string {
	detected := DetectLanguage(message)
	if sessionLanguage == "" {
		return detected
	}
	if len(strings.Fields(message)) < 3 {
		return sessionLanguage
	}
	return detected
}
