//go:build darwin

package icon

var systemFontPaths = []string{
	"/Library/Fonts/Arial.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
}
