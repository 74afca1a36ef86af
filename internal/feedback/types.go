// Package feedback turns user feedback on a document selection into the
// canonical payload delivered to the collection webhook.
package feedback

import (
	"net/url"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	MinRating = 1
	MaxRating = 5
)

// SupportedHost is the document editor the extension works on.
const SupportedHost = "docs.google.com"

type Kind string

const (
	KindRelative Kind = "relative"
	KindAbsolute Kind = "absolute"
)

func (k Kind) Known() bool {
	return k == KindRelative || k == KindAbsolute
}

// Details is the kind-specific part of a Request. It is one of Relative,
// Absolute or Unknown.
type Details interface {
	Kind() Kind
}

// Relative feedback proposes the output the user expected instead.
type Relative struct {
	ExpectedOutput string
	Comment        string
}

func (Relative) Kind() Kind { return KindRelative }

// Absolute feedback rates the output on a numeric scale.
type Absolute struct {
	Rating  int
	Comment string
}

func (Absolute) Kind() Kind { return KindAbsolute }

// Unknown carries a kind the service does not recognise. It normalizes to a
// payload with no kind-specific fields.
type Unknown struct {
	Name string
}

func (u Unknown) Kind() Kind { return Kind(u.Name) }

// Common holds the fields shared by every kind.
type Common struct {
	SelectedText string
	SourceURL    string
	Timestamp    string
}

type Request struct {
	Common
	Details Details
}

func (r Request) Kind() Kind {
	if r.Details == nil {
		return ""
	}
	return r.Details.Kind()
}

// NewRelative builds a relative request, rejecting a blank expected output.
func NewRelative(common Common, expectedOutput, comment string) (Request, error) {
	req := Request{Common: common, Details: Relative{ExpectedOutput: expectedOutput, Comment: comment}}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// NewAbsolute builds an absolute request, rejecting ratings outside
// MinRating..MaxRating.
func NewAbsolute(common Common, rating int, comment string) (Request, error) {
	req := Request{Common: common, Details: Absolute{Rating: rating, Comment: comment}}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Payload is the canonical record sent to the webhook. Kind-specific fields
// are pointers so that a relative payload carries no rating key and an
// absolute one no expectedOutput key, while zero values still serialize.
type Payload struct {
	SelectedText   string  `json:"selectedText"`
	SourceURL      string  `json:"sourceUrl"`
	Timestamp      string  `json:"timestamp"`
	ExpectedOutput *string `json:"expectedOutput,omitempty"`
	Rating         *int    `json:"rating,omitempty"`
	Comment        *string `json:"comment,omitempty"`
}

// Kind infers the feedback kind from which fields are present.
func (p Payload) Kind() Kind {
	switch {
	case p.ExpectedOutput != nil:
		return KindRelative
	case p.Rating != nil:
		return KindAbsolute
	default:
		return ""
	}
}

// IsSupportedSource reports whether rawURL points at the supported editor.
func IsSupportedSource(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Hostname() == SupportedHost
}
