// Package naming generates and recognizes the names of synthesized slides and
// shapes. Names are the only state that survives between runs, so they are
// what makes re-running the synthesizer idempotent.
package naming

import (
	"strings"
	"time"
)

// Kind identifies a generated slide.
type Kind string

const (
	KindMagnifying   Kind = "magnifying"
	KindMagnified    Kind = "magnified"
	KindMagnifiedPan Kind = "magnified-pan"
	KindDeMagnifying Kind = "demagnifying"
	KindSingleSlide  Kind = "single-slide"
)

// Tags persisted on the document. They must never change.
const (
	RootTag   = "PPTLabsZoomToAreaSlide"
	MarkerTag = "PPTLabsMagnifyShape"
	AckTag    = "PPAck"

	magnifyingTag   = "PPTLabsMagnifyingSlide"
	magnifiedTag    = "PPTLabsMagnifiedSlide"
	magnifiedPanTag = "PPTLabsMagnifiedPanSlide"
	deMagnifyingTag = "PPTLabsDeMagnifyingSlide"
	singleSlideTag  = "PPTLabsMagnifyingSingleSlide"
)

// Order matters for KindOf: longer tags sharing a prefix come first.
var kindTags = []struct {
	kind Kind
	tag  string
}{
	{KindSingleSlide, singleSlideTag},
	{KindMagnifiedPan, magnifiedPanTag},
	{KindMagnifying, magnifyingTag},
	{KindMagnified, magnifiedTag},
	{KindDeMagnifying, deMagnifyingTag},
}

// yyyyMMddHHmmss followed by four fractional digits.
const timestampLayout = "20060102150405.0000"

// Kinds lists every generated slide kind.
func Kinds() []Kind {
	return []Kind{KindMagnifying, KindMagnified, KindMagnifiedPan, KindDeMagnifying, KindSingleSlide}
}

// Tag returns the name prefix of kind, or "" for an unknown kind.
func Tag(kind Kind) string {
	for _, kt := range kindTags {
		if kt.kind == kind {
			return kt.tag
		}
	}
	return ""
}

// Timestamp formats ts the way every generated name is suffixed.
func Timestamp(ts time.Time) string {
	return strings.Replace(ts.Format(timestampLayout), ".", "", 1)
}

// GenerateName returns tag followed by the timestamp of ts.
func GenerateName(tag string, ts time.Time) string {
	return tag + Timestamp(ts)
}

// Namer stamps names with the current time.
type Namer struct {
	Now func() time.Time
}

// NewNamer returns a Namer reading the wall clock.
func NewNamer() *Namer {
	return &Namer{Now: time.Now}
}

func (n *Namer) now() time.Time {
	if n == nil || n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

// Slide returns a fresh name for a generated slide of the given kind.
func (n *Namer) Slide(kind Kind) string {
	return GenerateName(Tag(kind), n.now())
}

// Root returns a fresh name marking a slide as a synthesis root.
func (n *Namer) Root() string {
	return GenerateName(RootTag, n.now())
}

// Marker returns a fresh marker shape name.
func (n *Namer) Marker() string {
	return GenerateName(MarkerTag, n.now())
}

// Ack returns a fresh acknowledgement slide name.
func (n *Namer) Ack() string {
	return GenerateName(AckTag, n.now())
}

// MatchesGeneratedArtifact reports whether name belongs to a generated slide
// of any kind, whatever its timestamp.
func MatchesGeneratedArtifact(name string) bool {
	_, ok := KindOf(name)
	return ok
}

// KindOf returns the kind encoded in a generated slide name.
func KindOf(name string) (Kind, bool) {
	for _, kt := range kindTags {
		if strings.Contains(name, kt.tag) {
			return kt.kind, true
		}
	}
	return "", false
}

// IsSynthesisRoot reports whether a slide name marks a slide zoomed before.
func IsSynthesisRoot(name string) bool { return strings.Contains(name, RootTag) }

// IsMarker reports whether a shape name belongs to a marker or fitted copy.
func IsMarker(name string) bool { return strings.Contains(name, MarkerTag) }

// IsAck reports whether a slide name belongs to the acknowledgement slide.
func IsAck(name string) bool { return strings.Contains(name, AckTag) }
