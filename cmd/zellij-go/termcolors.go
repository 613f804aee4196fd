package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/zellij-org/zellij-go/internal/ipc"
)

// reportTerminalColors queries the attaching terminal's own foreground
// and background colors (answering the OSC 10/11 queries termenv sends
// on our behalf) and forwards them to the session as X11 rgb: strings,
// the same format a pane's own OSC query response would carry.
func reportTerminalColors(client *ipc.Client) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	output := termenv.NewOutput(os.Stdout)
	if fg := output.ForegroundColor(); fg != nil {
		client.Send(ipc.ClientMessage{Kind: ipc.MsgForegroundColor, ColorInstruction: colorToX11(fg)})
	}
	if bg := output.BackgroundColor(); bg != nil {
		client.Send(ipc.ClientMessage{Kind: ipc.MsgBackgroundColor, ColorInstruction: colorToX11(bg)})
	}
}

// colorToX11 renders a termenv color as an X11 "rgb:RRRR/GGGG/BBBB"
// string, the wire format pane OSC 10/11 responses already use.
func colorToX11(c termenv.Color) string {
	if c == nil {
		return ""
	}
	if rgb, ok := c.(termenv.RGBColor); ok {
		hex := string(rgb)
		if len(hex) == 7 && hex[0] == '#' {
			r, _ := strconv.ParseUint(hex[1:3], 16, 8)
			g, _ := strconv.ParseUint(hex[3:5], 16, 8)
			b, _ := strconv.ParseUint(hex[5:7], 16, 8)
			return fmt.Sprintf("rgb:%04x/%04x/%04x", r*0x101, g*0x101, b*0x101)
		}
	}
	rgb := termenv.ConvertToRGB(c)
	r := uint8(rgb.R*255 + 0.5)
	g := uint8(rgb.G*255 + 0.5)
	b := uint8(rgb.B*255 + 0.5)
	return fmt.Sprintf("rgb:%04x/%04x/%04x", uint16(r)*0x101, uint16(g)*0x101, uint16(b)*0x101)
}
