package models

// File names shared by the generator, the ETL merger and the reporter.
const (
	CustomersFile = "customers.csv"
	ProductsFile  = "products.csv"
	OrdersFile    = "orders.csv"
	SessionsFile  = "sessions.csv"
	AdSpendFile   = "ad_spend_monthly.csv"

	MasterFile = "master_dataset.csv"

	TopCustomersFile      = "top_customers.csv"
	CategorySalesFile     = "category_sales.csv"
	AverageOrderValueFile = "average_order_value.txt"
	MonthlySalesFile      = "monthly_sales.csv"
	TopCustomersChart     = "top_customers.png"
	CategorySalesChart    = "category_sales.png"
	MonthlySalesChart     = "monthly_sales.png"
	ReportIndexFile       = "index.html"
)

// RawTables lists the generator outputs in the order they are written and
// loaded.
var RawTables = []string{CustomersFile, ProductsFile, OrdersFile, SessionsFile, AdSpendFile}
