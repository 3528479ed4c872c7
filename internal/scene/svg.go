package scene

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// GlowFilterID is the id of the shared hover glow filter.
const GlowFilterID = "node-glow"

// WriteSVG writes s as a standalone SVG document, drawing node bodies with v.
func WriteSVG(w io.Writer, s Scene, v NodeVisual) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(s.Width), num(s.Height), num(s.Width), num(s.Height))
	buf.WriteString("\n")

	buf.WriteString(`<defs>`)
	fmt.Fprintf(&buf, `<filter id="%s" x="-50%%" y="-50%%" width="200%%" height="200%%">`, GlowFilterID)
	buf.WriteString(`<feGaussianBlur stdDeviation="3" result="coloredBlur"/>`)
	buf.WriteString(`<feMerge><feMergeNode in="coloredBlur"/><feMergeNode in="SourceGraphic"/></feMerge>`)
	buf.WriteString(`</filter>`)
	buf.WriteString(`</defs>`)
	buf.WriteString("\n")

	if s.Transform != "" {
		fmt.Fprintf(&buf, `<g transform="%s">`, escape(s.Transform))
	} else {
		buf.WriteString(`<g>`)
	}
	buf.WriteString("\n")

	buf.WriteString(`<g class="links">`)
	for _, e := range s.Edges {
		fmt.Fprintf(&buf, `<path d="%s" fill="none" stroke="#4a5568" stroke-opacity="%s" stroke-width="%s" data-state="%s"/>`,
			e.Path, num(e.Style.Opacity), num(e.Style.Width), e.State)
	}
	buf.WriteString("</g>\n")

	buf.WriteString(`<g class="nodes">`)
	buf.WriteString("\n")
	for _, n := range s.Nodes {
		fmt.Fprintf(&buf, `<g data-id="%s" transform="translate(%s,%s)" cursor="pointer"`,
			escape(n.ID), num(n.X), num(n.Y))
		if n.Hovered {
			fmt.Fprintf(&buf, ` filter="url(#%s)"`, GlowFilterID)
		}
		buf.WriteString(">")

		v.Draw(&buf, n)
		writeLabel(&buf, n.Label)

		buf.WriteString("</g>\n")
	}
	buf.WriteString("</g>\n")

	buf.WriteString("</g>\n</svg>\n")

	_, err := w.Write(buf.Bytes())
	return err
}

func writeLabel(buf *bytes.Buffer, l Label) {
	fmt.Fprintf(buf, `<text text-anchor="middle" dy=".35em" fill="white" font-size="%spx" font-weight="500" pointer-events="none">`,
		num(l.FontSize))
	if !l.Wrapped() {
		buf.WriteString(escape(strings.Join(l.Lines, " ")))
		buf.WriteString("</text>")
		return
	}

	offsets := l.LineOffsets()
	prev := 0.0
	for i, line := range l.Lines {
		fmt.Fprintf(buf, `<tspan x="0" dy="%sem">%s</tspan>`, num(offsets[i]-prev), escape(line))
		prev = offsets[i]
	}
	buf.WriteString("</text>")
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
