package templates

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomsim/internal/models"
)

func TestTopCustomersTable_EscapesNames(t *testing.T) {
	var b strings.Builder
	err := TopCustomersTable([]models.CustomerRevenue{
		{CustomerID: "7", FullName: "<script>alert(1)</script>", TotalValue: 12.5, Orders: 3},
	}).Render(context.Background(), &b)
	require.NoError(t, err)

	html := b.String()
	assert.Contains(t, html, `id="customers-content"`)
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "$12.50")
	assert.Contains(t, html, "<td>3</td>")
}

func TestCategoryAndMonthlyTables(t *testing.T) {
	var b strings.Builder
	require.NoError(t, CategoryTable([]models.CategorySales{{Category: "Books", TotalValue: 3}}).Render(context.Background(), &b))
	assert.Contains(t, b.String(), `<span class="category-badge">Books</span>`)
	assert.Contains(t, b.String(), "$3.00")

	b.Reset()
	require.NoError(t, MonthlyTable([]models.MonthlyData{{Month: "2024-01", Volume: 99.999}}).Render(context.Background(), &b))
	assert.Contains(t, b.String(), "2024-01")
	assert.Contains(t, b.String(), "$100.00")
}

func TestDashboard(t *testing.T) {
	var b strings.Builder
	require.NoError(t, Dashboard().Render(context.Background(), &b))

	html := b.String()
	for _, want := range []string{
		"E-commerce Analytics Dashboard",
		"Top Customers by Revenue",
		"Sales by Product Category",
		"Monthly Revenue Trend",
		"Average Order Value",
		"@get('/sse/refresh-all')",
		`id="customers-content"`,
	} {
		assert.Contains(t, html, want)
	}
}

func TestReportIndex(t *testing.T) {
	var b strings.Builder
	err := ReportIndex(ReportIndexData{
		RunID:             "run-1",
		GeneratedAt:       time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Source:            "master_dataset.csv",
		Orders:            5,
		AverageOrderValue: 20,
		TopCustomers:      []models.CustomerRevenue{{CustomerID: "1", FullName: "Alex Lee", TotalValue: 30, Orders: 2}},
		Charts:            []Chart{{Title: "Top Customers", File: "top_customers.png"}},
		Artifacts:         []Artifact{{Name: "Top customers", File: "top_customers.csv"}},
	}).Render(context.Background(), &b)
	require.NoError(t, err)

	html := b.String()
	assert.Contains(t, html, "2025-01-02T03:04:05Z")
	assert.Contains(t, html, "run-1")
	assert.Contains(t, html, "$20.00")
	assert.Contains(t, html, "across 5 orders")
	assert.Contains(t, html, "Alex Lee")
	assert.Contains(t, html, `<img src="top_customers.png"`)
	assert.Contains(t, html, `<a href="top_customers.csv">Top customers</a>`)
}
