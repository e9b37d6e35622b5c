package assistant

import (
	"strings"
	"unicode"
)

// minScore is the threshold a rule must clear before its response is used.
const minScore = 2

// offlineRule matches a query by keyword overlap. Required words must all be
// present; keywords add one point each, and specificity weight breaks ties
// toward narrower rules.
type offlineRule struct {
	keywords []string
	required []string
	weight   int
	response string
}

// OfflineResponder answers chatbot queries from a fixed rule table, with no
// network and no randomness: the same input always yields the same output.
// The rule table is selected by the script of the input (Devanagari selects
// the Hindi table, everything else the English one).
type OfflineResponder struct {
	english  []offlineRule
	hindi    []offlineRule
	fallback map[string]string
}

// NewOfflineResponder builds the responder with its built-in rule tables.
func NewOfflineResponder() *OfflineResponder {
	return &OfflineResponder{
		english: []offlineRule{
			{
				keywords: []string{"subject", "subjects", "course", "courses", "catalog", "class"},
				response: "You can browse every subject from the home page. Each card opens the subject's notes, PDFs, and links.",
			},
			{
				keywords: []string{"download", "pdf", "notes", "file", "files", "material"},
				response: "Open a subject and tap any PDF to view or download it. Link resources open in a new tab.",
			},
			{
				keywords: []string{"exam", "test", "syllabus", "schedule", "timetable", "date"},
				required: []string{"exam"},
				weight:   1,
				response: "Exam schedules are posted in the announcement banner when available. Check the home page banner or ask an admin in chat.",
			},
			{
				keywords: []string{"message", "chat", "admin", "contact", "help", "support"},
				response: "Use the chat bubble to message the admin team directly. They see your message in their inbox and reply in the same thread.",
			},
			{
				keywords: []string{"notification", "notifications", "push", "alert", "updates"},
				response: "Allow notifications in your browser to get an alert whenever new study material is uploaded.",
			},
			{
				keywords: []string{"login", "sign", "account", "google", "email"},
				response: "Sign in with your school email from the top-right corner. Your account is created automatically on first sign-in.",
			},
		},
		hindi: []offlineRule{
			{
				keywords: []string{"विषय", "कोर्स", "क्लास", "सूची"},
				response: "सभी विषय होम पेज पर उपलब्ध हैं। किसी भी विषय कार्ड पर टैप करके उसके नोट्स, PDF और लिंक देखें।",
			},
			{
				keywords: []string{"डाउनलोड", "नोट्स", "फाइल", "सामग्री"},
				response: "विषय खोलकर किसी भी PDF पर टैप करें। PDF देखी या डाउनलोड की जा सकती है।",
			},
			{
				keywords: []string{"परीक्षा", "टेस्ट", "तारीख", "समय"},
				required: []string{"परीक्षा"},
				weight:   1,
				response: "परीक्षा की जानकारी घोषणा बैनर में दी जाती है। होम पेज देखें या चैट में एडमिन से पूछें।",
			},
			{
				keywords: []string{"संदेश", "चैट", "एडमिन", "मदद", "सहायता"},
				response: "चैट बबल से एडमिन टीम को सीधे संदेश भेजें। वे उसी थ्रेड में जवाब देंगे।",
			},
		},
		fallback: map[string]string{
			"en": "I'm not sure about that. Try asking about subjects, downloads, exams, or message the admin team from the chat bubble.",
			"hi": "मुझे इसका उत्तर नहीं पता। विषयों, डाउनलोड या परीक्षा के बारे में पूछें, या चैट से एडमिन को संदेश भेजें।",
		},
	}
}

// Answer returns the best response for a query, or the language's fallback
// string when nothing clears the threshold.
func (r *OfflineResponder) Answer(query string) string {
	lang := detectLanguage(query)
	rules := r.english
	if lang == "hi" {
		rules = r.hindi
	}

	tokens := tokenize(query)
	best := -1
	bestScore := 0
	for i, rule := range rules {
		score := scoreRule(rule, tokens)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 || bestScore < minScore {
		return r.fallback[lang]
	}
	return rules[best].response
}

// scoreRule counts keyword hits plus the rule's specificity weight. A rule
// with unmet required words scores zero.
func scoreRule(rule offlineRule, tokens map[string]bool) int {
	for _, req := range rule.required {
		if !tokens[req] {
			return 0
		}
	}
	score := 0
	for _, kw := range rule.keywords {
		if tokens[kw] {
			score++
		}
	}
	if score == 0 {
		return 0
	}
	return score + rule.weight
}

// detectLanguage returns "hi" when the query contains Devanagari, else "en".
func detectLanguage(query string) string {
	for _, r := range query {
		if unicode.Is(unicode.Devanagari, r) {
			return "hi"
		}
	}
	return "en"
}

func tokenize(query string) map[string]bool {
	tokens := make(map[string]bool)
	// Marks count as word runes so Devanagari matras do not split tokens.
	for _, word := range strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsMark(r)
	}) {
		tokens[word] = true
	}
	return tokens
}
