package runner

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const verbosePrefix = "[verbose]"

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
	ansiGray  = "\x1b[90m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiBlue  = "\x1b[34m"
)

type verboseStyle int

const (
	styleDefault verboseStyle = iota
	stylePhase
	styleCorrect
	styleError
)

// verboseLogger writes human progress lines when verbose output is on.
type verboseLogger struct {
	enabled bool
	writer  io.Writer
	palette verbosePalette
}

func newVerboseLogger(enabled bool, writer io.Writer, noColor bool) verboseLogger {
	if writer == nil {
		enabled = false
	}
	return verboseLogger{enabled: enabled, writer: writer, palette: paletteFor(writer, noColor)}
}

func (v verboseLogger) write(style verboseStyle, line string) {
	if !v.enabled {
		return
	}
	fmt.Fprintf(v.writer, "%s %s\n", v.palette.prefix(verbosePrefix), v.palette.apply(style, line))
}

func (v verboseLogger) heading(line string) { v.write(stylePhase, line) }
func (v verboseLogger) line(line string)    { v.write(styleDefault, line) }
func (v verboseLogger) failure(line string) { v.write(styleError, line) }
func (v verboseLogger) summary(line string) { v.write(styleCorrect, line) }

func (v verboseLogger) scored(line string, correct bool) {
	if correct {
		v.write(styleCorrect, line)
		return
	}
	v.write(styleError, line)
}

type verbosePalette struct {
	enabled bool
}

func paletteFor(writer io.Writer, noColor bool) verbosePalette {
	if noColor {
		return verbosePalette{enabled: false}
	}
	return verbosePalette{enabled: shouldUseStyling(writer)}
}

func shouldUseStyling(writer io.Writer) bool {
	if writer == nil {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if strings.EqualFold(os.Getenv("CLICOLOR"), "0") {
		return false
	}
	if file, ok := writer.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}

func (p verbosePalette) prefix(text string) string {
	if !p.enabled {
		return text
	}
	return ansiDim + ansiGray + text + ansiReset
}

func (p verbosePalette) apply(style verboseStyle, text string) string {
	if !p.enabled {
		return text
	}
	switch style {
	case stylePhase:
		return ansiBold + ansiBlue + text + ansiReset
	case styleCorrect:
		return ansiBold + ansiGreen + text + ansiReset
	case styleError:
		return ansiBold + ansiRed + text + ansiReset
	default:
		return text
	}
}
