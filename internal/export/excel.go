// Package export renders report listings as spreadsheets.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"swachhsetu/internal/model"
)

const (
	summarySheet = "Summary"
	reportsSheet = "Reports"
	timeLayout   = "02.01.2006 15:04"
)

var reportHeaders = []string{
	"ID", "Created", "Category", "Severity", "Status", "Title",
	"Address", "Landmark", "Latitude", "Longitude", "Resolved", "Admin note",
}

type Generator struct {
	loc *time.Location
}

// NewGenerator formats timestamps in loc.
func NewGenerator(loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{loc: loc}
}

// Reports builds a workbook with a status summary and one row per report.
func (g *Generator) Reports(reports []model.Report, generatedAt time.Time) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, reports, generatedAt)

	if _, err := file.NewSheet(reportsSheet); err != nil {
		return nil, err
	}
	if err := g.writeReports(file, reports); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, reports []model.Report, generatedAt time.Time) {
	var counts model.StatusCounts
	for _, r := range reports {
		counts.Add(r.Status, 1)
	}

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}
	set("A1", "Generated")
	set("B1", generatedAt.In(g.loc).Format(timeLayout))
	set("A2", "Total reports")
	set("B2", counts.Total)
	set("A3", "Pending")
	set("B3", counts.Pending)
	set("A4", "In progress")
	set("B4", counts.InProgress)
	set("A5", "Resolved")
	set("B5", counts.Resolved)
	set("A6", "Rejected")
	set("B6", counts.Rejected)

	_ = file.SetColWidth(summarySheet, "A", "A", 20)
	_ = file.SetColWidth(summarySheet, "B", "B", 20)
}

func (g *Generator) writeReports(file *excelize.File, reports []model.Report) error {
	for i, header := range reportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		_ = file.SetCellValue(reportsSheet, cell, header)
	}

	for i, r := range reports {
		row := i + 2
		values := []interface{}{
			r.ID.String(),
			r.CreatedAt.In(g.loc).Format(timeLayout),
			string(r.Category),
			string(r.Severity),
			string(r.Status),
			r.Title,
			r.Location.Address,
			r.Location.Landmark,
			r.Location.Latitude,
			r.Location.Longitude,
			g.formatOptional(r.ResolvedAt),
			r.AdminNote,
		}
		if err := file.SetSheetRow(reportsSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
	}

	_ = file.SetColWidth(reportsSheet, "A", "A", 38)
	_ = file.SetColWidth(reportsSheet, "B", "E", 16)
	_ = file.SetColWidth(reportsSheet, "F", "H", 32)
	_ = file.SetColWidth(reportsSheet, "I", "K", 14)
	_ = file.SetColWidth(reportsSheet, "L", "L", 40)
	return file.SetPanes(reportsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (g *Generator) formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(g.loc).Format(timeLayout)
}
