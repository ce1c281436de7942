//go:build windows

package icon

var systemFontPaths = []string{
	`C:\Windows\Fonts\arial.ttf`,
	`C:\Windows\Fonts\segoeui.ttf`,
}
