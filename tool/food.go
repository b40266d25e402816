package tool

import (
	"fmt"
	"strings"
)

// FoodSearch scans the keywords for the first known food keyword, in the
// order pizza, sushi, burger, chinese.
func FoodSearch(req FoodSearchRequest) []Listing {
	keywords := strings.ToLower(req.Keywords)
	for _, key := range foodKeywords {
		if !strings.Contains(keywords, key) {
			continue
		}
		if req.ShowAlternatives {
			if alt, ok := foodAlternatives[key]; ok {
				return cloneListings(alt)
			}
		}
		return cloneListings(foodResults[key])
	}

	return errorListing("No matching food found for the given keywords.")
}

func SaveUserPreferences(req SaveUserPreferencesRequest) *SaveUserPreferencesResponse {
	if req.PostalCode == "" {
		return &SaveUserPreferencesResponse{Error: "Missing postal code"}
	}

	msg := fmt.Sprintf("Saved preferences: Postal code %s", req.PostalCode)
	var deliveryTime *string
	if req.DeliveryTime != nil && *req.DeliveryTime != "" {
		msg += fmt.Sprintf(", Delivery time %s", *req.DeliveryTime)
		v := *req.DeliveryTime
		deliveryTime = &v
	}

	return &SaveUserPreferencesResponse{
		PostalCode:   req.PostalCode,
		DeliveryTime: deliveryTime,
		Message:      msg,
	}
}

func SearchRestaurants(req SearchRestaurantsRequest) []Listing {
	if req.PostalCode == "" || req.Cuisine == "" {
		return errorListing("Missing postal code or cuisine type")
	}

	cuisine := strings.ToLower(req.Cuisine)
	list, ok := restaurants[cuisine]
	if !ok {
		return errorListing(fmt.Sprintf("No restaurants found for cuisine: %s", req.Cuisine))
	}
	if req.ShowAlternatives {
		return cloneListings(restaurantAlternatives[cuisine])
	}

	return cloneListings(list)
}

// GetRestaurantMenu looks the restaurant up by exact, case-sensitive name.
func GetRestaurantMenu(req GetRestaurantMenuRequest) *GetRestaurantMenuResponse {
	if req.RestaurantName == "" {
		return &GetRestaurantMenuResponse{Error: "Missing restaurant name"}
	}

	items, ok := menus[req.RestaurantName]
	if !ok {
		return &GetRestaurantMenuResponse{
			Error: fmt.Sprintf("Menu not found for restaurant: %s", req.RestaurantName),
		}
	}

	menu := make([]MenuItem, len(items))
	copy(menu, items)
	return &GetRestaurantMenuResponse{
		Name: req.RestaurantName,
		Menu: menu,
	}
}
