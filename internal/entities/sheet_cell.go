package entities

import "time"

// SheetCell is one non-empty cell of a locally stored table.
// Empty cells are never stored; clearing a cell deletes its row.
type SheetCell struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Sheet     string    `gorm:"column:sheet_name;size:100;uniqueIndex:idx_sheet_cell,priority:1" json:"sheet"`
	Row       int       `gorm:"column:row_num;uniqueIndex:idx_sheet_cell,priority:2" json:"row"`
	Col       int       `gorm:"column:col_num;uniqueIndex:idx_sheet_cell,priority:3" json:"col"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SheetCell) TableName() string {
	return "sheet_cells"
}
