package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"

	"concierge/internal/logger"
)

// DefaultLanguage is returned when detection finds nothing better
const DefaultLanguage = "en"

// LanguageProfile lists the words that indicate a language: common
// function words and real-estate vocabulary
type LanguageProfile struct {
	Code       string
	Indicators []string
	Terms      []string
}

// GlossaryEntry maps one concept to its wording per language code
type GlossaryEntry struct {
	Phrase bool
	Terms  map[string]string
}

// LanguageService detects message languages and substitutes a small
// real-estate glossary between them. It is not a general translator.
type LanguageService struct {
	log      *logger.Logger
	profiles []LanguageProfile
	glossary []GlossaryEntry
	patterns map[string]*regexp.Regexp
}

// NewLanguageService creates a language service. Phrase entries of the
// glossary are applied before single terms.
func NewLanguageService(log *logger.Logger, profiles []LanguageProfile, glossary []GlossaryEntry) *LanguageService {
	ordered := make([]GlossaryEntry, 0, len(glossary))
	for _, g := range glossary {
		if g.Phrase {
			ordered = append(ordered, g)
		}
	}
	for _, g := range glossary {
		if !g.Phrase {
			ordered = append(ordered, g)
		}
	}

	patterns := make(map[string]*regexp.Regexp)
	for _, g := range ordered {
		for _, term := range g.Terms {
			key := strings.ToLower(term)
			if _, ok := patterns[key]; !ok {
				patterns[key] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(key))
			}
		}
	}

	return &LanguageService{
		log:      log.With("service", "LanguageService"),
		profiles: profiles,
		glossary: ordered,
		patterns: patterns,
	}
}

// DetectLanguage returns the ISO 639-1 code of the most likely language.
// Keyword scoring runs first; script ranges are only consulted when no
// keyword matched. Short or ambiguous input may be misdetected.
func (s *LanguageService) DetectLanguage(text string) string {
	lower := strings.ToLower(text)
	tokens := tokenCounts(lower)

	best, bestScore := "", 0
	for _, p := range s.profiles {
		score := 0
		for _, w := range p.Indicators {
			score += countTerm(lower, tokens, w)
		}
		for _, w := range p.Terms {
			score += countTerm(lower, tokens, w)
		}
		if score > bestScore {
			best, bestScore = p.Code, score
		}
	}
	if bestScore > 0 {
		return best
	}

	return detectScript(text)
}

// TranslateMessage replaces glossary terms of source with those of target.
// Matches are whole-word and case-insensitive. Text with no glossary match
// is returned unchanged.
func (s *LanguageService) TranslateMessage(text, source, target string) string {
	source, target = NormalizeLanguage(source), NormalizeLanguage(target)
	if source == target {
		return text
	}

	out, replaced := text, 0
	for _, g := range s.glossary {
		from, to := g.Terms[source], g.Terms[target]
		if from == "" || to == "" {
			continue
		}
		var n int
		out, n = replaceWholeWord(out, s.patterns[strings.ToLower(from)], from, to)
		replaced += n
	}

	if replaced == 0 {
		s.log.Warn("no glossary terms matched, returning original text",
			"source", source, "target", target, "length", len(text))
		return text
	}
	return out
}

// NormalizeLanguage reduces any BCP 47 tag to its base language code
func NormalizeLanguage(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	base, _ := tag.Base()
	return base.String()
}

func detectScript(text string) string {
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
			return "ja"
		case unicode.Is(unicode.Hangul, r):
			return "ko"
		case unicode.Is(unicode.Han, r):
			return "zh"
		case unicode.Is(unicode.Arabic, r):
			return "ar"
		case unicode.Is(unicode.Cyrillic, r):
			return "ru"
		}
	}
	return DefaultLanguage
}

func tokenCounts(lower string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	}) {
		counts[tok]++
	}
	return counts
}

// countTerm counts a single word by token, and multi-word or Han terms by substring
func countTerm(lower string, tokens map[string]int, term string) int {
	term = strings.ToLower(term)
	if strings.ContainsRune(term, ' ') || hasHan(term) {
		return strings.Count(lower, term)
	}
	return tokens[term]
}

func hasHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

func replaceWholeWord(text string, re *regexp.Regexp, from, to string) (string, int) {
	if re == nil {
		return text, 0
	}
	// Han text has no word separators
	checkBoundary := !hasHan(from)

	var b strings.Builder
	last, n := 0, 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if checkBoundary && !isWordBoundary(text, loc[0], loc[1]) {
			continue
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString(to)
		last = loc[1]
		n++
	}
	if n == 0 {
		return text, 0
	}
	b.WriteString(text[last:])
	return b.String(), n
}

func isWordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// DefaultLanguageProfiles returns the built-in profiles, English first so
// that it wins ties
func DefaultLanguageProfiles() []LanguageProfile {
	return []LanguageProfile{
		{
			Code:       "en",
			Indicators: []string{"the", "and", "is", "are", "for", "with", "what", "how", "looking", "want", "need", "i", "my", "a", "in", "under", "to", "me"},
			Terms:      []string{"house", "apartment", "bedroom", "bathroom", "kitchen", "garden", "price", "property", "garage", "suburb"},
		},
		{
			Code:       "es",
			Indicators: []string{"el", "los", "las", "que", "y", "en", "para", "con", "busco", "quiero", "una", "es", "por", "cuánto", "estoy"},
			Terms:      []string{"casa", "apartamento", "dormitorio", "baño", "cocina", "jardín", "precio", "propiedad", "garaje", "barrio"},
		},
		{
			Code:       "fr",
			Indicators: []string{"le", "les", "des", "et", "est", "pour", "avec", "je", "cherche", "une", "dans", "combien", "vous", "à"},
			Terms:      []string{"maison", "appartement", "chambre", "salle de bain", "cuisine", "jardin", "prix", "propriété", "quartier"},
		},
		{
			Code:       "de",
			Indicators: []string{"der", "die", "das", "und", "ist", "ich", "suche", "mit", "für", "ein", "eine", "nicht", "wie", "viel"},
			Terms:      []string{"haus", "wohnung", "schlafzimmer", "badezimmer", "küche", "garten", "preis", "immobilie", "nachbarschaft"},
		},
		{
			Code:       "zh",
			Indicators: []string{"我", "的", "是", "在", "有"},
			Terms:      []string{"房子", "公寓", "卧室", "浴室", "厨房", "花园", "价格", "房产"},
		},
	}
}

// DefaultGlossary returns the built-in real-estate glossary
func DefaultGlossary() []GlossaryEntry {
	noun := func(en, es, fr, de, zh string) GlossaryEntry {
		return GlossaryEntry{Terms: map[string]string{"en": en, "es": es, "fr": fr, "de": de, "zh": zh}}
	}
	phrase := func(en, es, fr, de, zh string) GlossaryEntry {
		e := noun(en, es, fr, de, zh)
		e.Phrase = true
		return e
	}

	return []GlossaryEntry{
		noun("house", "casa", "maison", "haus", "房子"),
		noun("apartment", "apartamento", "appartement", "wohnung", "公寓"),
		noun("bedroom", "dormitorio", "chambre", "schlafzimmer", "卧室"),
		noun("bathroom", "baño", "salle de bain", "badezimmer", "浴室"),
		noun("kitchen", "cocina", "cuisine", "küche", "厨房"),
		noun("garden", "jardín", "jardin", "garten", "花园"),
		noun("price", "precio", "prix", "preis", "价格"),
		noun("neighborhood", "barrio", "quartier", "nachbarschaft", "社区"),
		noun("property", "propiedad", "propriété", "immobilie", "房产"),
		noun("garage", "garaje", "garage", "garage", "车库"),

		phrase("for sale", "en venta", "à vendre", "zu verkaufen", "出售"),
		phrase("how much", "cuánto cuesta", "combien coûte", "wie viel kostet", "多少钱"),
		phrase("thank you", "gracias", "merci", "danke", "谢谢"),
		phrase("i am looking for", "estoy buscando", "je cherche", "ich suche", "我在找"),
		phrase("near the beach", "cerca de la playa", "près de la plage", "in strandnähe", "靠近海滩"),
		phrase("good morning", "buenos días", "bonjour", "guten morgen", "早上好"),
	}
}
