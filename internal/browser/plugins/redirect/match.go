package redirect

import "regexp"

// Matcher decides whether a URL or page text is worth handing to a Handler
type Matcher interface {
	Match(s string) bool
}

// MatchFunc adapts a function to a Matcher
type MatchFunc func(s string) bool

// Match calls f
func (f MatchFunc) Match(s string) bool { return f(s) }

// Exact matches s exactly
func Exact(s string) Matcher {
	return MatchFunc(func(v string) bool { return v == s })
}

// Regexp matches when re matches at the start of the input
func Regexp(re *regexp.Regexp) Matcher {
	return MatchFunc(func(v string) bool {
		loc := re.FindStringIndex(v)
		return loc != nil && loc[0] == 0
	})
}

// Func matches when fn returns true
func Func(fn func(s string) bool) Matcher {
	return MatchFunc(fn)
}

func matches(m Matcher, s string) bool {
	return m == nil || m.Match(s)
}
