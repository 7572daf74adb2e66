package secretgen

import "strings"

// Character classes eligible for generation. Punctuation matches the set
// AWS Secrets Manager uses for GetRandomPassword.
const (
	LowercaseChars   = "abcdefghijklmnopqrstuvwxyz"
	UppercaseChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	DigitChars       = "0123456789"
	PunctuationChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"
	SpaceChar        = " "
)

// Policy selects which character classes may appear in a generated value.
// The four main classes are opt-out; space is opt-in. ExcludeCharacters
// removes individual characters from every class it appears in.
type Policy struct {
	ExcludeLowercase   bool
	ExcludeUppercase   bool
	ExcludeNumbers     bool
	ExcludePunctuation bool
	IncludeSpace       bool
	ExcludeCharacters  string
}

// ClassSet is one enabled character class after exclusions have been applied.
type ClassSet struct {
	Name  string
	Chars string
}

// Alphabet is the effective character set for one generation request.
// Combined concatenates the surviving classes in a fixed order (lowercase,
// uppercase, digits, punctuation, space). Classes holds each enabled class
// that still has at least one character after exclusion; classes emptied by
// ExcludeCharacters are dropped without error.
type Alphabet struct {
	Combined string
	Classes  []ClassSet
}

// BuildAlphabet derives the usable alphabet for a policy. It fails with
// EmptyAlphabetError when no characters survive, since generating from an
// empty set would otherwise loop forever or emit a zero-entropy value.
func BuildAlphabet(policy Policy) (Alphabet, error) {
	type classDef struct {
		name  string
		chars string
	}

	var enabled []classDef
	if !policy.ExcludeLowercase {
		enabled = append(enabled, classDef{"lowercase", LowercaseChars})
	}
	if !policy.ExcludeUppercase {
		enabled = append(enabled, classDef{"uppercase", UppercaseChars})
	}
	if !policy.ExcludeNumbers {
		enabled = append(enabled, classDef{"digit", DigitChars})
	}
	if !policy.ExcludePunctuation {
		enabled = append(enabled, classDef{"punctuation", PunctuationChars})
	}
	if policy.IncludeSpace {
		enabled = append(enabled, classDef{"space", SpaceChar})
	}

	var combined strings.Builder
	var classes []ClassSet
	for _, class := range enabled {
		kept := removeChars(class.chars, policy.ExcludeCharacters)
		if kept == "" {
			continue
		}
		combined.WriteString(kept)
		classes = append(classes, ClassSet{Name: class.name, Chars: kept})
	}

	if combined.Len() == 0 {
		return Alphabet{}, EmptyAlphabetError{Policy: policy}
	}

	return Alphabet{Combined: combined.String(), Classes: classes}, nil
}

// removeChars returns set with every character present in exclude removed.
// Membership is a plain character test, never pattern matching.
func removeChars(set, exclude string) string {
	if exclude == "" {
		return set
	}
	var b strings.Builder
	for _, r := range set {
		if !strings.ContainsRune(exclude, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
