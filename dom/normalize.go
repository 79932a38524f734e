package dom

import "strings"

// carriage returns, zero width spaces and non-breaking spaces (literal and
// as entities). Longer references are listed first so they win.
var normalizer = strings.NewReplacer(
	"\r", "",
	"&nbsp;", " ",
	"\u00a0", " ",
	"&#13;", "",
	"&#13", "",
	"&#8203;", "",
	"&#8203", "",
)

// Normalize prepares raw markup for a Supplier.
func Normalize(markup string) string {
	return normalizer.Replace(strings.TrimSpace(markup))
}
