package reporting

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
)

// WorkbookContentType is the media type of generated inventories.
const WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const inventorySheet = "Inventaire"

// InventoryHeader lists the columns of the inventory sheet.
var InventoryHeader = []string{
	"ID",
	"Boucle",
	"Nom",
	"Race",
	"Sexe",
	"Age",
	"Poids (kg)",
	"Etat",
	"Robe",
	"Statut",
	"Score mammaire",
	"Classification",
	"Date analyse",
}

var inventoryWidths = []float64{14, 14, 18, 12, 6, 12, 10, 18, 16, 10, 14, 22, 14}

// InventoryWorkbook renders the animals visible in scope as an .xlsx file.
func (s *Service) InventoryWorkbook(ctx context.Context, scope models.Scope) ([]byte, error) {
	if scope.UserID == "" {
		return nil, models.ErrNoActiveUser
	}
	sheep, err := s.repos.Sheep.ListScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	return buildInventory(sheep)
}

func buildInventory(sheep []models.Sheep) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(inventorySheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E8F5E9"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range InventoryHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(inventorySheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(inventorySheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(inventorySheet, name, name, inventoryWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, sh := range sheep {
		var score any
		if sh.MammaryScore != nil {
			score = *sh.MammaryScore
		}
		analysed := ""
		if !sh.AnalyzedAt.IsZero() {
			analysed = sh.AnalyzedAt.Format(dateLayout)
		}
		row := []any{
			sh.ID,
			sh.TagID,
			sh.Name,
			string(sh.Race),
			string(sh.Sex),
			sh.AgeLabel(),
			sh.Weight,
			string(sh.State),
			sh.CoatColor,
			string(sh.Status),
			score,
			sh.Classification,
			analysed,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(inventorySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
