// Package catalog holds the static classification tables for the library:
// subject canonicalization, subject emojis and file naming helpers.
package catalog

import "strings"

// subjectMap folds free-text subject input to its canonical display form.
// Entries are kept exactly as the production data expects them, including the
// "Software Enginering" spelling and the lowercase "business studies" value,
// because stored rows already carry those display forms.
var subjectMap = map[string]string{
	"maths":       "Mathematics",
	"math":        "Mathematics",
	"mathematics": "Mathematics",

	"computer":         "Computer Science",
	"computers":        "Computer Science",
	"computer science": "Computer Science",

	"science":          "Combined Science",
	"sciences":         "Combined Science",
	"combined science": "Combined Science",

	"accounts":               "Principles of Accounts",
	"accounting":             "Principles of Accounts",
	"account":                "Principles of Accounts",
	"principles of accounts": "Principles of Accounts",

	"heritage":         "Heritage Studies",
	"heritage studies": "Heritage Studies",

	"chem":      "Chemistry",
	"chemistry": "Chemistry",

	"crop":         "Crop Science",
	"crop science": "Crop Science",

	"phy":     "Physics",
	"phys":    "Physics",
	"physics": "Physics",

	"stats":      "Statistics",
	"statistics": "Statistics",

	"bio":     "Biology",
	"biology": "Biology",

	"agric":       "Agriculture",
	"agriculture": "Agriculture",

	"geo":       "Geography",
	"geography": "Geography",

	"hist":    "History",
	"history": "History",

	"eng":     "English",
	"english": "English",

	"lits":                  "Literature in English",
	"literature in english": "Literature in English",

	"frs":                          "Family and Religious Studies",
	"family and religious studies": "Family and Religious Studies",

	"se":                   "Software Engineering",
	"software engineering": "Software Enginering",

	"bes": "business studies",
}

// subjectEmojis maps lowercase canonical subject names to a display emoji.
var subjectEmojis = map[string]string{
	"mathematics":                  "📐",
	"computer science":             "💻",
	"combined science":             "🔬",
	"physics":                      "⚛️",
	"chemistry":                    "⚗️",
	"mechanics":                    "⚙️",
	"biology":                      "🧬",
	"principles of accounts":       "💰",
	"crop science":                 "🌱",
	"software engineering":         "👨‍💻",
	"statistics":                   "📊",
	"geography":                    "🌍",
	"french":                       "FR",
	"shona":                        "📚",
	"history":                      "📜",
	"english":                      "📖",
	"literature in shona":          "📕",
	"ndebele":                      "🗣️",
	"heritage studies":             "🏛️",
	"literature in english":        "📚",
	"family and religious studies": "⛪",
	"economics":                    "📊",
	"agriculture":                  "🌾",
	"commerce":                     "💼",
	"business studies":             "💼",
}

// DefaultEmoji is used for subjects with no dedicated emoji.
const DefaultEmoji = "📚"

// NormalizeSubject folds user input to the canonical subject display form.
// Unmapped input is returned title-cased; empty input yields "".
func NormalizeSubject(input string) string {
	clean := strings.ToLower(strings.TrimSpace(input))
	if clean == "" {
		return ""
	}
	if canonical, ok := subjectMap[clean]; ok {
		return canonical
	}
	return TitleCase(clean)
}

// SubjectEmoji returns the emoji for a subject (case-insensitive), falling
// back to DefaultEmoji.
func SubjectEmoji(subject string) string {
	if e, ok := subjectEmojis[strings.ToLower(strings.TrimSpace(subject))]; ok {
		return e
	}
	return DefaultEmoji
}

// SubjectEmojis returns the full emoji table for dashboard rendering.
func SubjectEmojis() map[string]string {
	out := make(map[string]string, len(subjectEmojis))
	for k, v := range subjectEmojis {
		out[k] = v
	}
	return out
}

// TitleCase upper-cases the first letter of every space-separated word.
func TitleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
