// Package common keeps enums shared by configuration and conversion code.
package common

// Specification of requested output type.
// ENUM(yaml, ion, tree)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtYaml:
		return ".yaml"
	case OutputFmtIon:
		return ".ion"
	case OutputFmtTree:
		return ".txt"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// Specification of node tree supplier used for input markup.
// ENUM(html, xhtml)
type InputFmt int
