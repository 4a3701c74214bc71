package export

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LangTag resolves a content language, given as a BCP 47 tag ("es") or an
// English name ("Spanish"), to the tag used in the document's lang
// attribute. Unknown names fall back to "en".
func LangTag(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "en"
	}
	if tag, err := language.Parse(name); err == nil {
		return tag.String()
	}
	namer := display.English.Tags()
	for _, tag := range display.Supported.Tags() {
		if strings.EqualFold(namer.Name(tag), name) {
			return tag.String()
		}
	}
	return "en"
}
