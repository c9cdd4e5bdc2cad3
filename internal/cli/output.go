package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("!")
)

func heading(text string) string {
	return color.New(color.Bold).Sprint(text)
}

func truckLabel(truck string) string {
	if truck == "" {
		return color.New(color.FgHiBlack).Sprint("-")
	}
	return color.New(color.FgCyan).Sprint(truck)
}

// formatVolume 去除多余的尾零，与台账存储的 6 位精度一致。
func formatVolume(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTotal(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func printOK(out io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(out, "%s %s\n", okMark, fmt.Sprintf(format, args...))
}

func printWarn(out io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(out, "%s %s\n", warnMark, fmt.Sprintf(format, args...))
}
