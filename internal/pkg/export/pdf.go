package export

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// pdfGridSize divides evenly by the column counts used in reports.
const pdfGridSize = 120

var (
	colorPrimary = &props.Color{Red: 37, Green: 99, Blue: 235}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// Document is a titled PDF made of stacked tables.
type Document struct {
	Title    string
	Subtitle string
	Author   string
	Sections []Table
}

// PDF renders the document on landscape A4 pages.
func PDF(doc Document) ([]byte, error) {
	for _, t := range doc.Sections {
		if err := t.validate(); err != nil {
			return nil, err
		}
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithMaxGridSize(pdfGridSize).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(doc.Title, true).
		WithAuthor(doc.Author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(text.NewRow(10, doc.Title, props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary}))
	if doc.Subtitle != "" {
		m.AddRows(text.NewRow(7, doc.Subtitle, props.Text{Size: 9, Color: colorGray}))
	}
	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.5}))

	for _, section := range doc.Sections {
		m.AddRows(sectionRows(section)...)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pdf: %w", err)
	}
	return out.GetBytes(), nil
}

func sectionRows(t Table) []core.Row {
	rows := make([]core.Row, 0, len(t.Rows)+3)
	rows = append(rows, text.NewRow(9, t.Title, props.Text{Style: fontstyle.Bold, Size: 10, Top: 3}))

	sizes := columnSizes(len(t.Headers))
	rows = append(rows, tableRow(t.Headers, sizes, props.Text{Style: fontstyle.Bold, Size: 8, Top: 1, Left: 1}))
	rows = append(rows, line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}))

	if len(t.Rows) == 0 {
		rows = append(rows, text.NewRow(6, "No data", props.Text{Size: 8, Color: colorGray, Align: align.Center}))
		return rows
	}
	for _, r := range t.Rows {
		rows = append(rows, tableRow(r, sizes, props.Text{Size: 8, Top: 1, Left: 1}))
	}
	return rows
}

func tableRow(cells []string, sizes []int, style props.Text) core.Row {
	cols := make([]core.Col, len(cells))
	for i, c := range cells {
		cols[i] = col.New(sizes[i]).Add(text.New(c, style))
	}
	return row.New(6).Add(cols...)
}

// columnSizes splits the grid across n columns, giving the remainder to the first.
func columnSizes(n int) []int {
	sizes := make([]int, n)
	base := pdfGridSize / n
	for i := range sizes {
		sizes[i] = base
	}
	sizes[0] += pdfGridSize - base*n
	return sizes
}
