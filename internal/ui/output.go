// Package ui provides colored terminal output for the CLI.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const headerWidth = 60

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgBlue)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)

	// Indian digit grouping for rupee amounts (1,20,000.50)
	inrPrinter = message.NewPrinter(language.MustParse("en-IN"))
)

// center pads text on the left so it appears centered in the given width.
// Text wider than the width is returned unchanged.
func center(text string, width int) string {
	if len(text) >= width {
		return text
	}
	return strings.Repeat(" ", (width-len(text))/2) + text
}

// Header prints a banner with the given title.
func Header(title string) {
	line := strings.Repeat("=", headerWidth)
	headerColor.Println(line)
	headerColor.Println(center(title, headerWidth))
	headerColor.Println(line)
}

// Step prints a numbered progress step.
func Step(current, total int, text string) {
	infoColor.Printf("[%d/%d] ", current, total)
	fmt.Println(text)
}

// Success prints a success message.
func Success(text string) {
	successColor.Printf("✓ %s\n", text)
}

// Info prints an informational message.
func Info(text string) {
	infoColor.Printf("ℹ %s\n", text)
}

// Warning prints a warning message.
func Warning(text string) {
	warnColor.Printf("⚠ %s\n", text)
}

// Error prints an error message.
func Error(text string) {
	errorColor.Printf("✗ %s\n", text)
}

// BlueText prints text in blue.
func BlueText(text string) {
	infoColor.Println(text)
}

// YellowText prints text in yellow.
func YellowText(text string) {
	warnColor.Println(text)
}

// FormatINR renders an amount with the rupee sign and Indian digit
// grouping.
func FormatINR(amount float64) string {
	return inrPrinter.Sprintf("₹%.2f", amount)
}
