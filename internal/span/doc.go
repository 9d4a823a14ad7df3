// Package span maps physical line numbers onto byte ranges of a text and
// tests those ranges against the byte spans of structural elements.
//
// [Lines] builds a [Table] with one half-open [Range] per line. A changed
// line is attributed to an element when [Range.Intersects] reports that the
// element's span contains either endpoint of the line's range.
package span
