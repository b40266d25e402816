package tool

// foodKeywords fixes the scan order of FoodSearch.
var foodKeywords = []string{"pizza", "sushi", "burger", "chinese"}

var (
	foodResults = map[string][]Listing{
		"pizza":  {{Name: "Margherita Pizza", Price: 10.99, Restaurant: "Pizza Place", Rating: 4.5}},
		"sushi":  {{Name: "Salmon Sushi Set", Price: 15.99, Restaurant: "Sushi Bar", Rating: 4.7}},
		"burger": {{Name: "Classic Burger", Price: 9.99, Restaurant: "Burger Joint", Rating: 4.3}},
		"chinese": {
			{Name: "Ni HAO", Specialty: "Kung Pao Chicken", Rating: 4.7, Reviews: 500, Platform: "UberEats"},
			{Name: "Wok & Roll", Specialty: "Crispy duck pancakes", Rating: 4.5, Reviews: 300, Platform: "Deliveroo"},
			{Name: "Bamboo House", Specialty: "Beef in black bean sauce", Rating: 4.6, Reviews: 450, Platform: "Just Eat"},
		},
	}

	chineseAlternatives = []Listing{
		{Name: "Xin Kai", Specialty: "Kung Pao Chicken", Description: "Spicy chicken with peanuts and vegetables in a savory sauce", Rating: 4.7, Reviews: 500, Platform: "UberEats"},
		{Name: "Imperial Palace", Specialty: "Chicken with Garlic Sauce", Description: "Tender chicken with garlic and ginger sauce", Rating: 4.8, Reviews: 320, Platform: "Deliveroo"},
		{Name: "Dragon Phoenix", Specialty: "Gong Bao Ji Ding", Description: "Traditional Kung Pao Chicken", Rating: 4.9, Reviews: 400, Platform: "Just Eat"},
	}

	foodAlternatives = map[string][]Listing{
		"pizza":   {{Name: "Pepperoni Pizza", Price: 12.99, Restaurant: "Pizza Express", Rating: 4.6}},
		"sushi":   {{Name: "Dragon Roll", Price: 16.99, Restaurant: "Sushi Master", Rating: 4.8}},
		"burger":  {{Name: "Double Cheeseburger", Price: 11.99, Restaurant: "Burger King", Rating: 4.4}},
		"chinese": chineseAlternatives,
	}

	restaurants = map[string][]Listing{
		"chinese": {
			{Name: "Xin Kai", Specialty: "Kung Pao Chicken", Rating: 4.7, Reviews: 500, Platform: "UberEats"},
			{Name: "Wok & Roll", Specialty: "Crispy duck pancakes", Rating: 4.5, Reviews: 300, Platform: "Deliveroo"},
			{Name: "Bamboo House", Specialty: "Beef in black bean sauce", Rating: 4.6, Reviews: 450, Platform: "Just Eat"},
		},
		"italian": {
			{Name: "Pasta Paradise", Specialty: "Homemade pasta", Rating: 4.8, Reviews: 420, Platform: "UberEats"},
			{Name: "Pizza Express", Specialty: "Wood-fired pizza", Rating: 4.6, Reviews: 380, Platform: "Deliveroo"},
			{Name: "Roma Italian", Specialty: "Authentic Italian cuisine", Rating: 4.7, Reviews: 350, Platform: "Just Eat"},
		},
		"indian": {
			{Name: "Spice Garden", Specialty: "Butter chicken", Rating: 4.8, Reviews: 450, Platform: "UberEats"},
			{Name: "Taj Mahal", Specialty: "Biryani", Rating: 4.7, Reviews: 380, Platform: "Deliveroo"},
			{Name: "Royal Indian", Specialty: "Curry", Rating: 4.6, Reviews: 320, Platform: "Just Eat"},
		},
	}

	restaurantAlternatives = map[string][]Listing{
		"chinese": chineseAlternatives,
		"italian": {
			{Name: "La Cucina", Specialty: "Homemade lasagna", Description: "Layers of pasta with rich meat sauce and cheese", Rating: 4.9, Reviews: 380, Platform: "UberEats"},
			{Name: "Pasta Express", Specialty: "Seafood linguine", Description: "Fresh seafood with linguine in white wine sauce", Rating: 4.7, Reviews: 320, Platform: "Deliveroo"},
			{Name: "Roma Bella", Specialty: "Margherita pizza", Description: "Classic pizza with tomato, mozzarella, and basil", Rating: 4.8, Reviews: 350, Platform: "Just Eat"},
		},
		"indian": {
			{Name: "Spice Garden", Specialty: "Butter chicken", Description: "Tender chicken in rich, creamy tomato sauce", Rating: 4.8, Reviews: 450, Platform: "UberEats"},
			{Name: "Taj Mahal", Specialty: "Biryani", Description: "Fragrant rice dish with spices and tender meat", Rating: 4.7, Reviews: 380, Platform: "Deliveroo"},
			{Name: "Royal Indian", Specialty: "Curry", Description: "Rich, flavorful curry with your choice of protein", Rating: 4.6, Reviews: 320, Platform: "Just Eat"},
		},
	}
)

var (
	sweetAndSourChicken = MenuItem{Name: "Sweet and Sour Chicken", Description: "Crispy chicken in sweet and sour sauce with pineapple", Price: 12.99}
	eggFriedRice        = MenuItem{Name: "Egg Fried Rice", Description: "Fluffy rice with scrambled egg and spring onions", Price: 3.50}
	beefBlackBean       = MenuItem{Name: "Beef in Black Bean Sauce", Description: "Sliced beef with black bean sauce and vegetables", Price: 14.99}
	springRolls         = MenuItem{Name: "Spring Rolls", Description: "Crispy vegetable spring rolls with sweet chili sauce", Price: 4.99}
	stillWater          = MenuItem{Name: "Still Water (500ml)", Description: "Bottled still water", Price: 1.50}
	cocaCola            = MenuItem{Name: "Coca Cola (330ml)", Description: "Bottled Coca Cola", Price: 1.99}

	menus = map[string][]MenuItem{
		"Dragon Phoenix": {
			{Name: "Gong Bao Ji Ding", Description: "Tender chicken pieces stir-fried with peanuts, vegetables, and chili in a savory sauce", Price: 13.99},
			eggFriedRice,
			beefBlackBean,
			sweetAndSourChicken,
			springRolls,
			stillWater,
			cocaCola,
		},
		"Golden Dragon": {
			sweetAndSourChicken,
			eggFriedRice,
			beefBlackBean,
			{Name: "Kung Pao Chicken", Description: "Spicy chicken with peanuts and vegetables", Price: 13.99},
			springRolls,
			stillWater,
			cocaCola,
		},
		"Xin Kai": {
			sweetAndSourChicken,
			eggFriedRice,
			beefBlackBean,
			{Name: "Kung Pao Chicken", Description: "Spicy chicken with peanuts and vegetables", Price: 17.83},
			springRolls,
			stillWater,
			cocaCola,
		},
	}
)

// cloneListings keeps callers from mutating the catalog.
func cloneListings(in []Listing) []Listing {
	out := make([]Listing, len(in))
	copy(out, in)
	return out
}
