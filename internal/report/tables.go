package report

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"

	apperrors "ecomsim/internal/errors"
	"ecomsim/internal/models"
)

// money is written with exactly two decimals.
type money float64

func (m money) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(m), 'f', 2, 64), nil
}

type customerRow struct {
	CustomerID string `csv:"customer_id"`
	FullName   string `csv:"full_name"`
	TotalValue money  `csv:"total_value"`
}

type categoryRow struct {
	Category   string `csv:"category"`
	TotalValue money  `csv:"total_value"`
}

type monthRow struct {
	Month      string `csv:"month"`
	TotalValue money  `csv:"total_value"`
}

func customerRows(in []models.CustomerRevenue) []customerRow {
	out := make([]customerRow, len(in))
	for i, c := range in {
		out[i] = customerRow{CustomerID: c.CustomerID, FullName: c.FullName, TotalValue: money(c.TotalValue)}
	}
	return out
}

func categoryRows(in []models.CategorySales) []categoryRow {
	out := make([]categoryRow, len(in))
	for i, c := range in {
		out[i] = categoryRow{Category: c.Category, TotalValue: money(c.TotalValue)}
	}
	return out
}

func monthRows(in []models.MonthlyData) []monthRow {
	out := make([]monthRow, len(in))
	for i, m := range in {
		out[i] = monthRow{Month: m.Month, TotalValue: money(m.Volume)}
	}
	return out
}

// FormatAverageOrderValue renders the single line stored in
// average_order_value.txt.
func FormatAverageOrderValue(v float64) string {
	return fmt.Sprintf("Average Order Value: $%.2f", v)
}

func writeCSV(path string, rows any) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Output(err, path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := gocsv.Marshal(rows, w); err != nil {
		return apperrors.Output(err, path)
	}
	if err := w.Flush(); err != nil {
		return apperrors.Output(err, path)
	}
	if err := f.Close(); err != nil {
		return apperrors.Output(err, path)
	}
	return nil
}

func writeText(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return apperrors.Output(err, path)
	}
	return nil
}
