package generator

var (
	firstNames = []string{"Alex", "Sam", "Taylor", "Jordan", "Casey", "Riley", "Morgan", "Jamie", "Avery", "Cameron", "Chris", "Pat"}
	lastNames  = []string{"Lee", "Kim", "Patel", "Garcia", "Smith", "Wang", "Brown", "Nguyen", "Lopez", "Martinez", "Khan", "Singh"}
)

var countries = NewWeighted(
	Choice[string]{"USA", 0.35},
	Choice[string]{"UK", 0.15},
	Choice[string]{"Canada", 0.10},
	Choice[string]{"Australia", 0.08},
	Choice[string]{"Germany", 0.07},
	Choice[string]{"India", 0.08},
	Choice[string]{"France", 0.05},
	Choice[string]{"Spain", 0.05},
	Choice[string]{"Brazil", 0.04},
	Choice[string]{"Japan", 0.03},
)

// Shared by customers and sessions.
var acquisitionChannels = NewWeighted(
	Choice[string]{"Organic", 0.25},
	Choice[string]{"Paid Search", 0.20},
	Choice[string]{"Social", 0.20},
	Choice[string]{"Referral", 0.15},
	Choice[string]{"Email", 0.15},
	Choice[string]{"Affiliate", 0.05},
)

// Category pairs a product category with its selection weight and the
// ordered set of subcategories drawn uniformly once the category is chosen.
type Category struct {
	Name          string
	Weight        float64
	Subcategories []string
}

var Categories = []Category{
	{"Electronics", 0.18, []string{"Phones", "Computers", "Audio", "Accessories"}},
	{"Apparel", 0.15, []string{"Men", "Women", "Kids"}},
	{"Home", 0.14, []string{"Kitchen", "Furniture", "Decor"}},
	{"Beauty", 0.12, []string{"Skin", "Makeup", "Hair"}},
	{"Sports", 0.12, []string{"Fitness", "Outdoor", "TeamSport"}},
	{"Toys", 0.10, []string{"Indoor", "Outdoor", "Educational"}},
	{"Outdoors", 0.10, []string{"Camping", "Gardening", "Boating"}},
	{"Books", 0.09, []string{"Fiction", "Nonfiction", "Education"}},
}

var categories = func() Weighted[Category] {
	choices := make([]Choice[Category], len(Categories))
	for i, c := range Categories {
		choices[i] = Choice[Category]{c, c.Weight}
	}
	return NewWeighted(choices...)
}()

// The repeated values keep the original seven-way table: 1 carries 80% of
// the mass.
var quantities = NewWeighted(
	Choice[int]{1, 0.45},
	Choice[int]{1, 0.20},
	Choice[int]{1, 0.15},
	Choice[int]{2, 0.10},
	Choice[int]{2, 0.06},
	Choice[int]{3, 0.03},
	Choice[int]{4, 0.01},
)

var discounts = NewWeighted(
	Choice[int]{0, 0.70},
	Choice[int]{5, 0.12},
	Choice[int]{10, 0.08},
	Choice[int]{15, 0.06},
	Choice[int]{20, 0.04},
)

var statuses = NewWeighted(
	Choice[string]{"completed", 0.93},
	Choice[string]{"returned", 0.05},
	Choice[string]{"cancelled", 0.02},
)

var paymentMethods = NewWeighted(
	Choice[string]{"card", 0.60},
	Choice[string]{"paypal", 0.15},
	Choice[string]{"applepay", 0.08},
	Choice[string]{"googlepay", 0.08},
	Choice[string]{"giftcard", 0.09},
)

var devices = NewWeighted(
	Choice[string]{"desktop", 0.55},
	Choice[string]{"mobile", 0.40},
	Choice[string]{"tablet", 0.05},
)

var platforms = NewWeighted(
	Choice[string]{"site", 0.60},
	Choice[string]{"app", 0.30},
	Choice[string]{"marketplace", 0.10},
)

var adChannels = []string{"Paid Search", "Social", "Display", "Affiliate", "Email"}
