package report

import "clockdrift/internal/residual"

// Block is a run of consecutive rows sharing an event id. Rows are
// [Start, End).
type Block struct {
	EventID string
	Start   int
	End     int
	// Shade alternates 0,1,0,... across successive blocks.
	Shade int
}

// EventBlocks folds rows into runs of equal event id. A repeated event id
// separated by another event starts a new block.
func EventBlocks(rows []residual.Row) []Block {
	var blocks []Block
	for i, row := range rows {
		if n := len(blocks); n > 0 && blocks[n-1].EventID == row.EventID {
			blocks[n-1].End = i + 1
			continue
		}
		blocks = append(blocks, Block{
			EventID: row.EventID,
			Start:   i,
			End:     i + 1,
			Shade:   len(blocks) % 2,
		})
	}
	return blocks
}
