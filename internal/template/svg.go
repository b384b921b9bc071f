package template

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"strconv"

	"github.com/arcanaland/cardpress/internal/layout"
)

// SVGOptions controls how a filled template is written as a vector document
type SVGOptions struct {
	// Fonts measures wrapped slots; nil disables wrapping
	Fonts *layout.FontSet
	// Fallback fills the background box when the artwork is missing
	Fallback color.NRGBA
}

// EncodeSVG writes the filled template as an SVG document. Wrapped text slots are
// split into centered <tspan> lines and a missing background becomes a solid <rect>.
func (f *Filled) EncodeSVG(w io.Writer, opts SVGOptions) error {
	doc := f.doc.clone()
	elements := doc.slotElements()

	if f.Background == "" {
		bg := f.Template.Background()
		el := elements[BackgroundSlot]
		el.name = xml.Name{Local: "rect"}
		el.attrs = []xml.Attr{
			{Name: xml.Name{Local: "id"}, Value: BackgroundSlot},
			{Name: xml.Name{Local: "x"}, Value: strconv.Itoa(bg.X)},
			{Name: xml.Name{Local: "y"}, Value: strconv.Itoa(bg.Y)},
			{Name: xml.Name{Local: "width"}, Value: strconv.Itoa(bg.Width)},
			{Name: xml.Name{Local: "height"}, Value: strconv.Itoa(bg.Height)},
			{Name: xml.Name{Local: "fill"}, Value: fmt.Sprintf("#%02x%02x%02x", opts.Fallback.R, opts.Fallback.G, opts.Fallback.B)},
			{Name: xml.Name{Local: "fill-opacity"}, Value: strconv.FormatFloat(float64(opts.Fallback.A)/255, 'f', 3, 64)},
		}
		el.children = nil
	}

	if opts.Fonts != nil {
		for _, s := range f.Template.TextSlots() {
			if !s.Wrapped() {
				continue
			}
			face, err := opts.Fonts.Face(s.Font, s.FontSize)
			if err != nil {
				return fmt.Errorf("slot %s: %v", s.ID, err)
			}
			el := elements[s.ID]
			el.setAttr("text-anchor", "middle")
			el.removeAttr("y")
			el.children = nil
			for _, line := range layout.Compose(f.Text(s.ID), face, s.Box()).Lines {
				el.children = append(el.children, &node{
					kind: elementNode,
					name: xml.Name{Local: "tspan"},
					attrs: []xml.Attr{
						{Name: xml.Name{Local: "x"}, Value: strconv.Itoa(s.X)},
						{Name: xml.Name{Local: "y"}, Value: strconv.Itoa(line.Y)},
					},
					children: []*node{{kind: textNode, data: []byte(line.Text)}},
				})
			}
		}
	}

	bw := bufio.NewWriter(w)
	if err := doc.writeTo(bw); err != nil {
		return err
	}
	return bw.Flush()
}
