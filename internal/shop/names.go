package shop

// Shop name components. A generated name is one prefix and one suffix
// joined with a space.
var shopNamePrefixes = []string{
	"Quick", "Fresh", "Daily", "Smart", "Value", "Prime", "Best", "Super",
	"Metro", "Urban", "Corner", "Family", "Golden", "Silver", "Blue", "Green",
}

var shopNameSuffixes = []string{
	"Mart", "Store", "Shop", "Market", "Goods", "Depot", "Outlet", "Express",
	"Plus", "Hub", "Place", "Stop", "Center", "Corner", "Essentials", "Basics",
}
