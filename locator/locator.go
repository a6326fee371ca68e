// Package locator parses structured image names.
//
// An image name has the form
//
//	<Actor><Body><Face>[ <attribute>...]
//
// where Actor is a run of letters, Body a run of digits and Face an optional
// single letter; for example "Actor12b Smile Wide". Actor+Body+Face is the
// Base, the key shared by every variant of one image group. Attributes are
// display metadata and never take part in matching.
//
// Parse never fails. A Token records whether the name was valid and defers
// the failure to the first field access, so callers can probe validity
// before committing to a malformed name.
package locator

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/meigma/portrait/internal/imgtype"
)

var grammar = regexp.MustCompile(`^((\p{L}+)(\p{N}+)(\p{L}?))((?:\s\p{L}+)*)$`)

// Submatch indexes into the grammar.
const (
	groupBase = 1 + iota
	groupActor
	groupBody
	groupFace
	groupAttrs
)

// ErrNameFormat is returned (wrapped in a *FormatError) by field accessors
// of an invalid Token.
var ErrNameFormat = imgtype.ErrNameFormat

// FormatError reports an image name that does not follow the grammar.
type FormatError struct {
	Name string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNameFormat, e.Name)
}

// Unwrap returns ErrNameFormat.
func (e *FormatError) Unwrap() error {
	return ErrNameFormat
}

// Token is a parsed image name.
type Token struct {
	text  string
	match []string
}

// Parse parses an image file name without extension.
func Parse(text string) Token {
	return Token{text: text, match: grammar.FindStringSubmatch(text)}
}

// Valid reports whether the name follows the grammar.
func (t Token) Valid() bool {
	return t.match != nil
}

// String returns the text the token was parsed from.
func (t Token) String() string {
	return t.text
}

// Validate returns a *FormatError for an invalid token, nil otherwise.
func (t Token) Validate() error {
	if t.match == nil {
		return &FormatError{Name: t.text}
	}
	return nil
}

func (t Token) group(i int) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t.match[i], nil
}

// Name returns the full name including attributes.
func (t Token) Name() (string, error) {
	return t.group(0)
}

// Base returns Actor+Body+Face, the group key.
func (t Token) Base() (string, error) {
	return t.group(groupBase)
}

// Actor returns the leading letters.
func (t Token) Actor() (string, error) {
	return t.group(groupActor)
}

// Body returns the digit run.
func (t Token) Body() (string, error) {
	return t.group(groupBody)
}

// Face returns the optional trailing letter, or "".
func (t Token) Face() (string, error) {
	return t.group(groupFace)
}

// Attributes returns the space separated words following the base.
func (t Token) Attributes() ([]string, error) {
	attrs, err := t.group(groupAttrs)
	if err != nil {
		return nil, err
	}
	return strings.Fields(attrs), nil
}

// ArchivePath returns root/Actor/Base.ima.
func (t Token) ArchivePath(root string) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	return filepath.Join(root, t.match[groupActor], t.match[groupBase]+imgtype.ArchiveExt), nil
}

// GroupDirectoryPath returns root/Actor/BodyFace, the directory holding
// loose variant images of the group.
func (t Token) GroupDirectoryPath(root string) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	return filepath.Join(root, t.match[groupActor], t.match[groupBody]+t.match[groupFace]), nil
}

// GroupSearchPattern returns the wildcard pattern selecting loose variant
// images of the group inside GroupDirectoryPath.
func (t Token) GroupSearchPattern() (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t.match[groupBase] + "*" + imgtype.ImageExt, nil
}

// ImagePath returns the loose image path of this exact variant.
func (t Token) ImagePath(root string) (string, error) {
	dir, err := t.GroupDirectoryPath(root)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, t.text+imgtype.ImageExt), nil
}
