package tts

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is the target language used when none is configured.
const DefaultLanguage = "en"

// NormalizeLanguage canonicalizes a language code, so "en_us" and "EN-us"
// both become "en-US". Unparseable codes are returned lower-cased.
func NormalizeLanguage(code string) string {
	code = strings.TrimSpace(strings.ReplaceAll(code, "_", "-"))
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	return tag.String()
}

// MatchesLanguage reports whether voiceLang begins with target, ignoring
// case and separator style.
func MatchesLanguage(voiceLang, target string) bool {
	if target == "" {
		return true
	}
	v := strings.ToLower(NormalizeLanguage(voiceLang))
	t := strings.ToLower(NormalizeLanguage(target))
	return strings.HasPrefix(v, t)
}

// PreferredVoice picks the default voice: the first voice whose language
// begins with target, else the first voice. It returns false for an empty list.
func PreferredVoice(voices []Voice, target string) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}
	for _, v := range voices {
		if MatchesLanguage(v.Language, target) {
			return v, true
		}
	}
	return voices[0], true
}

// FindVoice looks a voice up by ID.
func FindVoice(voices []Voice, id string) (Voice, bool) {
	for _, v := range voices {
		if v.ID == id {
			return v, true
		}
	}
	return Voice{}, false
}
