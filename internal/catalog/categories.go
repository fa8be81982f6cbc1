package catalog

// homeCategories is the carousel order of the home page.
var homeCategories = []string{
	"tshirt",
	"shirt",
	"jeans",
	"sneakers",
	"cargo",
	"trousers",
	"hoodies-sweaters",
	"flipflop",
	"men-sport",
	"men-accessories",
	"ladies-tshirt",
	"ladies-shirt",
	"ladies-jeans",
	"ladies-shorts",
	"coord-set",
	"ladies-cargo",
	"ladies-trousers",
	"ladies-hoodies",
	"ladies-sport",
	"ladies-clothing",
	"ladies-accessories",
	"lingerie",
}

var categoryNames = map[string]string{
	"tshirt":           "Men's T-Shirts",
	"shirt":            "Men's Shirts",
	"jeans":            "Men's Jeans",
	"sneakers":         "Men's Sneakers",
	"cargo":            "Men's Cargo",
	"trousers":         "Men's Trousers",
	"hoodies-sweaters": "Men's Hoodies & Sweaters",
	"flipflop":         "Men's Flip Flops",
	"men-sport":        "Men's Sport",
	"men-accessories":  "Men's Accessories",

	"ladies-tshirt":      "Ladies' T-Shirts",
	"ladies-shirt":       "Ladies' Shirts",
	"ladies-jeans":       "Ladies' Jeans",
	"ladies-shorts":      "Ladies' Shorts",
	"coord-set":          "Ladies' Co-ord Sets",
	"ladies-cargo":       "Ladies' Cargo",
	"ladies-trousers":    "Ladies' Trousers",
	"ladies-hoodies":     "Ladies' Hoodies",
	"ladies-sport":       "Ladies' Sport",
	"ladies-clothing":    "Ladies' Clothing",
	"ladies-accessories": "Ladies' Accessories",
	"lingerie":           "Ladies' Lingerie",

	"mobile":  "Mobile Phones",
	"watches": "Watches",
	"bags":    "Bags",
	"men":     "Men's Collection",
	"ladies":  "Ladies' Collection",
}

// DisplayName returns the shopper-facing name of a category slug.
func DisplayName(category string) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return category
}
