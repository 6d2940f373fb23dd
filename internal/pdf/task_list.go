package pdf

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"vectora/internal/models"
)

// Generator renders a user's tasks; handy to mock in tests.
type Generator interface {
	TaskList(w io.Writer, data TaskListData) error
}

// TaskListGenerator draws an A4 table of tasks.
// With FontPath set a UTF-8 TTF is embedded, otherwise core Helvetica is used
// and text is transliterated to cp1252.
type TaskListGenerator struct {
	FontPath string
	fontName string
}

type TaskListData struct {
	Owner     string
	Tasks     []models.Task
	CreatedAt time.Time
}

func NewTaskListGenerator(fontPath string) *TaskListGenerator {
	name := "Helvetica"
	if fontPath != "" {
		name = "DejaVu"
	}
	return &TaskListGenerator{FontPath: fontPath, fontName: name}
}

var columns = []struct {
	title string
	width float64
}{
	{"#", 10},
	{"Title", 78},
	{"Priority", 20},
	{"Due", 32},
	{"Category", 30},
	{"Done", 10},
}

func (g *TaskListGenerator) TaskList(w io.Writer, data TaskListData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Tasks", true)
	pdf.SetAuthor("Vectora", true)
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)

	tr := func(s string) string { return s }
	if g.FontPath != "" {
		pdf.AddUTF8Font(g.fontName, "", g.FontPath)
		pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
	} else {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, "Tasks", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	sub := data.CreatedAt.Format("02.01.2006 15:04")
	if data.Owner != "" {
		sub = tr(data.Owner) + "  /  " + sub
	}
	pdf.CellFormat(0, 6, sub, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	header := func() {
		pdf.SetFont(g.fontName, "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range columns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(g.fontName, "", 9)
	}
	header()

	if len(data.Tasks) == 0 {
		pdf.CellFormat(0, 8, "No tasks", "1", 1, "C", false, 0, "")
	}
	for i, t := range data.Tasks {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			header()
		}
		due := "-"
		if t.DateTime != nil {
			due = t.DateTime.Format("02.01.2006 15:04")
		}
		category := "-"
		if t.Category != nil && *t.Category != "" {
			category = *t.Category
		}
		done := ""
		if t.Status {
			done = "x"
		}
		cells := []string{
			fmt.Sprintf("%d", i+1),
			fit(pdf, tr(t.Title), columns[1].width-2),
			string(t.Priority),
			due,
			fit(pdf, tr(category), columns[4].width-2),
			done,
		}
		for j, col := range columns {
			align := "L"
			if j == 0 || j == 5 {
				align = "C"
			}
			pdf.CellFormat(col.width, 6, cells[j], "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

// fit cuts s so that it renders within width, appending "..." when shortened.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return strings.TrimSpace(string(r)) + "..."
}
