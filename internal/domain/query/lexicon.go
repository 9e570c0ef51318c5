package query

// VendorAliases maps lower-cased brand spellings to canonical vendor names.
// Hard-coded: the source store has no vendor registry to derive this from.
var VendorAliases = map[string]string{
	"kroger":      "Kroger",
	"walmart":     "Walmart",
	"wal-mart":    "Walmart",
	"target":      "Target",
	"costco":      "Costco",
	"safeway":     "Safeway",
	"whole foods": "Whole Foods",
	"wholefoods":  "Whole Foods",
	"trader joes": "Trader Joe's",
	"amazon":      "Amazon",
	"home depot":  "Home Depot",
	"lowes":       "Lowe's",
	"walgreens":   "Walgreens",
	"cvs":         "CVS",
	"rite aid":    "Rite Aid",
	"shell":       "Shell",
	"chevron":     "Chevron",
	"exxon":       "Exxon",
	"starbucks":   "Starbucks",
	"mcdonalds":   "McDonald's",
	"best buy":    "Best Buy",
	"ikea":        "IKEA",
}

// Categories is the fixed category vocabulary, matched as substrings.
var Categories = []string{
	"grocery",
	"groceries",
	"medical",
	"pharmacy",
	"utilities",
	"insurance",
	"restaurant",
	"dining",
	"gas",
	"fuel",
	"travel",
	"electronics",
	"clothing",
	"home improvement",
	"entertainment",
	"subscription",
	"tax",
	"receipt",
	"invoice",
	"warranty",
}
