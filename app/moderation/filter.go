// Package moderation rejects submissions containing banned terms before they
// reach storage. It is best-effort filtering, not a security boundary.
package moderation

import (
	"errors"
	"regexp"
	"strings"
)

// Kind tells which submitted field was rejected.
type Kind string

const (
	KindNickname Kind = "nickname"
	KindContent  Kind = "content"
)

const (
	nicknameMessage = "Your nickname contains inappropriate content. Please choose a different nickname."
	contentMessage  = "Your message contains inappropriate content. Please revise and try again."
)

// ErrRejected matches every *RejectionError via errors.Is.
var ErrRejected = errors.New("submission rejected by moderation")

// RejectionError carries the user-facing reason for a rejected submission.
type RejectionError struct {
	Kind    Kind
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

func (e *RejectionError) Is(target error) bool {
	return target == ErrRejected
}

// Filter matches text against a fixed set of banned terms. It is immutable
// and safe for concurrent use.
type Filter struct {
	terms   []string
	pattern *regexp.Regexp
}

// NewFilter compiles terms into a single whole-word, case-insensitive matcher.
// Multi-word terms match as one contiguous phrase.
func NewFilter(terms []string) *Filter {
	f := &Filter{}
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		f.terms = append(f.terms, t)
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	if len(quoted) > 0 {
		f.pattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return f
}

// NewDefaultFilter builds a Filter from the bundled term list.
func NewDefaultFilter() *Filter {
	return NewFilter(DefaultTerms().Terms())
}

// Terms returns a copy of the normalized term list.
func (f *Filter) Terms() []string {
	return append([]string(nil), f.terms...)
}

// Contains reports whether any banned term appears in text as a whole word.
func (f *Filter) Contains(text string) bool {
	_, ok := f.Match(text)
	return ok
}

// Match returns the first banned term found in text.
func (f *Filter) Match(text string) (string, bool) {
	if f.pattern == nil {
		return "", false
	}
	m := f.pattern.FindString(strings.ToLower(text))
	if m == "" {
		return "", false
	}
	return m, true
}

// ValidateSubmission checks the nickname and then the content. The content is
// not inspected when the nickname is rejected. Inputs are expected to be
// trimmed already and are never modified.
func (f *Filter) ValidateSubmission(nickname, content string) error {
	if f.Contains(nickname) {
		return &RejectionError{Kind: KindNickname, Message: nicknameMessage}
	}
	if f.Contains(content) {
		return &RejectionError{Kind: KindContent, Message: contentMessage}
	}
	return nil
}
