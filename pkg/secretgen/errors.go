package secretgen

import "fmt"

// EmptyAlphabetError reports a policy whose effective alphabet has no
// characters left after exclusions.
type EmptyAlphabetError struct {
	Policy Policy
}

func (e EmptyAlphabetError) Error() string {
	if e.Policy.ExcludeCharacters != "" {
		return "effective alphabet is empty: excludeCharacters removed every character from the enabled classes"
	}
	return "effective alphabet is empty: all character classes are excluded"
}

// InvalidLengthError reports an unusable requested length. Minimum is set
// when the length cannot hold one character from each required class.
type InvalidLengthError struct {
	Length  int
	Minimum int
}

func (e InvalidLengthError) Error() string {
	if e.Minimum > 0 {
		return fmt.Sprintf("length %d cannot hold one character from each of %d required classes", e.Length, e.Minimum)
	}
	return fmt.Sprintf("length must be positive, got %d", e.Length)
}

// DuplicateNameError reports two batch entries sharing a name.
type DuplicateNameError struct {
	Name string
}

func (e DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate secret name %q in batch", e.Name)
}
