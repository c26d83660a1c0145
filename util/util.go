package util

import (
	"path/filepath"
	"strings"
)

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsUnderScore(b byte) bool {
	return b == '_'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func IsLetterOrUnderscore(b byte) bool {
	return IsLetter(b) || IsUnderScore(b)
}

func IsLetterOrUnderscoreOrNumber(b byte) bool {
	return IsLetter(b) || IsUnderScore(b) || IsNumber(b)
}

// IsJackSymbol reports whether b is one of the single character symbols of jack.
func IsJackSymbol(b byte) bool {
	return strings.IndexByte("{}()[].,;+-*/&|<>=~", b) >= 0
}

// IsLabelCharacter reports whether b may appear in a vm label or function name.
func IsLabelCharacter(b byte) bool {
	return IsLetterOrUnderscoreOrNumber(b) || b == '.' || b == ':' || b == '$'
}

func IsJackFile(fileName string) bool {
	return filepath.Ext(fileName) == ".jack"
}

func IsVMFile(fileName string) bool {
	return filepath.Ext(fileName) == ".vm"
}

// BaseName returns the file name of path without directory and extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
