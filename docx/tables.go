package docx

import (
	"strconv"

	"github.com/tsawler/docqc/model"
)

// cellContentBuilder builds the blocks inside a table cell and resolves
// table style references.
type cellContentBuilder interface {
	buildBlocks(content *blockListXML, loc model.Location) ([]model.Block, error)
	resolveStyle(id string, kind ReferenceKind, loc model.Location) (model.StyleRef, error)
}

// tableParser handles parsing of DOCX tables.
type tableParser struct {
	content cellContentBuilder
}

func newTableParser(content cellContentBuilder) *tableParser {
	return &tableParser{content: content}
}

// ParseTable parses a table element located at loc. Blocks inside cells
// share the location of the outermost table, with the cell offset of the
// outermost cell.
func (tp *tableParser) ParseTable(tbl *tableXML, loc model.Location) (*model.Table, error) {
	table := &model.Table{
		Style: model.NoStyle,
		Grid:  tp.parseTableGrid(tbl.Grid),
	}

	if id := tbl.Properties.Style.Val; id != "" {
		ref, err := tp.content.resolveStyle(id, RefTableStyle, loc)
		if err != nil {
			return nil, err
		}
		table.Style = ref
	}

	for ri := range tbl.Rows {
		row, err := tp.parseRow(&tbl.Rows[ri], ri, loc)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, row)
	}

	tp.processVerticalMerges(table)
	return table, nil
}

// parseTableGrid extracts column widths from the table grid.
func (tp *tableParser) parseTableGrid(grid tableGridXML) []float64 {
	widths := make([]float64, len(grid.Cols))
	for i, col := range grid.Cols {
		widths[i] = parseTwips(col.W)
	}
	return widths
}

// parseRow parses a table row.
func (tp *tableParser) parseRow(row *tableRowXML, ri int, loc model.Location) (model.Row, error) {
	parsed := model.Row{
		Header: row.Properties.Header.set() && row.Properties.Header.on(),
	}

	for ci := range row.Cells {
		cellLoc := loc
		if cellLoc.Cell == nil {
			cellLoc = loc.WithCell(ri, ci)
		}
		cell, err := tp.parseCell(&row.Cells[ci], cellLoc)
		if err != nil {
			return model.Row{}, err
		}
		parsed.Cells = append(parsed.Cells, cell)
	}

	return parsed, nil
}

// parseCell parses a table cell.
func (tp *tableParser) parseCell(cell *tableCellXML, loc model.Location) (model.Cell, error) {
	parsed := model.Cell{
		ColSpan: 1,
		RowSpan: 1,
	}

	props := cell.Properties

	// Parse column span (gridSpan)
	if props.GridSpan.Val != "" {
		if span, err := strconv.Atoi(props.GridSpan.Val); err == nil && span > 0 {
			parsed.ColSpan = span
		}
	}

	// An empty or "continue" vMerge continues the merge started above
	if props.VMerge.XMLName.Local == "vMerge" && props.VMerge.Val != "restart" {
		parsed.MergedContinuation = true
	}

	blocks, err := tp.content.buildBlocks(&cell.Content, loc)
	if err != nil {
		return model.Cell{}, err
	}
	parsed.Blocks = blocks

	return parsed, nil
}

// processVerticalMerges calculates row spans for vertically merged cells.
func (tp *tableParser) processVerticalMerges(table *model.Table) {
	type cellPos struct{ row, cell int }
	starts := make(map[int]cellPos) // grid column -> merge start

	for ri := range table.Rows {
		col := 0
		for ci := range table.Rows[ri].Cells {
			cell := &table.Rows[ri].Cells[ci]
			if cell.MergedContinuation {
				if start, ok := starts[col]; ok {
					table.Rows[start.row].Cells[start.cell].RowSpan++
				}
			} else {
				starts[col] = cellPos{row: ri, cell: ci}
			}
			col += cell.ColSpan
		}
	}
}
