package dm

import "strings"

// Link is a processed cross-reference ready for resolution.
type Link struct {
	Role          Role
	Title         string
	Target        string
	ExplicitTitle bool
	Specific      bool // target looked absolute; search container-qualified first
}

// Order returns the search order implied by the link.
func (l Link) Order() SearchOrder {
	if l.Specific {
		return SearchSpecific
	}
	return SearchGeneral
}

// SplitExplicitTitle splits role text of the form "Title <target>" at the
// first "<" that follows a non-empty title.
// Text without that form is returned as both title and target.
func SplitExplicitTitle(text string) (title, target string, explicit bool) {
	text = strings.TrimSpace(text)
	if len(text) > 1 && strings.HasSuffix(text, ">") {
		if open := strings.Index(text[1:len(text)-1], "<"); open >= 0 {
			open++
			return strings.TrimSpace(text[:open]), strings.TrimSpace(text[open+1 : len(text)-1]), true
		}
	}
	return text, text, false
}

// DisplayTitle derives the title shown for a reference without an explicit
// one. A leading "~" keeps only the final path segment; otherwise the text is
// given a single leading "/". The title never affects lookup.
func DisplayTitle(text string) string {
	if rest, ok := strings.CutPrefix(text, "~"); ok {
		if i := strings.LastIndex(rest, Separator); i >= 0 {
			return rest[i+1:]
		}
		return rest
	}
	return Separator + strings.TrimLeft(text, Separator)
}

// ProcessLink turns the raw text of a role into a Link. Roles with fix-parens
// drop a trailing "()" from the target and normalise the title's parentheses,
// appending "()" when addParens is set.
func ProcessLink(role Role, text string, addParens bool) Link {
	title, target, explicit := SplitExplicitTitle(text)

	if role.FixParens {
		if !explicit {
			title = strings.TrimSuffix(title, callSuffix)
			if addParens {
				title += callSuffix
			}
		}
		target = strings.TrimSuffix(target, callSuffix)
	}

	if !explicit {
		title = DisplayTitle(title)
	}
	target = strings.TrimLeft(target, "~")

	return Link{
		Role:          role,
		Title:         title,
		Target:        target,
		ExplicitTitle: explicit,
		Specific:      strings.HasPrefix(target, Separator),
	}
}
