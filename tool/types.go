package tool

type (
	// Listing is a single food or restaurant search hit. Dish hits carry
	// Price and Restaurant; restaurant hits carry Specialty, Reviews and
	// Platform. A listing with only Error set is an error record.
	Listing struct {
		Error       string  `json:"error,omitempty"`
		Name        string  `json:"name,omitempty"`
		Price       float64 `json:"price,omitempty"`
		Restaurant  string  `json:"restaurant,omitempty"`
		Specialty   string  `json:"specialty,omitempty"`
		Description string  `json:"description,omitempty"`
		Rating      float64 `json:"rating,omitempty"`
		Reviews     int     `json:"reviews,omitempty"`
		Platform    string  `json:"platform,omitempty"`
	}

	MenuItem struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
	}

	CartItem struct {
		Name  string  `json:"name,omitempty" jsonschema:"description=Name of the menu item"`
		Price float64 `json:"price" jsonschema:"description=Unit price of the menu item in GBP"`
	}

	Totals struct {
		Subtotal    float64 `json:"subtotal"`
		Discount    float64 `json:"discount"`
		DeliveryFee float64 `json:"delivery_fee"`
		Total       float64 `json:"total"`
	}

	FoodSearchRequest struct {
		PostalCode       string `json:"postal_code" jsonschema:"required,description=Postal code of the delivery address"`
		Keywords         string `json:"keywords" jsonschema:"required,description=Keywords describing the food"`
		ShowAlternatives bool   `json:"show_alternatives,omitempty" jsonschema:"description=Return alternative recommendations after the user rejected the first results"`
	}

	SaveUserPreferencesRequest struct {
		PostalCode   string  `json:"postal_code" jsonschema:"required,description=Postal code of the delivery address"`
		DeliveryTime *string `json:"delivery_time,omitempty" jsonschema:"description=Preferred delivery time"`
	}

	SaveUserPreferencesResponse struct {
		Error        string  `json:"error,omitempty"`
		PostalCode   string  `json:"postal_code,omitempty"`
		DeliveryTime *string `json:"delivery_time"`
		Message      string  `json:"message,omitempty"`
	}

	SearchRestaurantsRequest struct {
		PostalCode       string  `json:"postal_code" jsonschema:"required,description=Postal code of the delivery address"`
		Cuisine          string  `json:"cuisine" jsonschema:"required,description=Cuisine type: chinese, italian or indian"`
		DeliveryTime     *string `json:"delivery_time,omitempty" jsonschema:"description=Preferred delivery time"`
		ShowAlternatives bool    `json:"show_alternatives,omitempty" jsonschema:"description=Return alternative recommendations after the user rejected the first results"`
	}

	GetRestaurantMenuRequest struct {
		RestaurantName string `json:"restaurant_name" jsonschema:"required,description=Exact name of the restaurant"`
	}

	GetRestaurantMenuResponse struct {
		Error string     `json:"error,omitempty"`
		Name  string     `json:"name,omitempty"`
		Menu  []MenuItem `json:"menu,omitempty"`
	}

	AddToCartRequest struct {
		RestaurantName string     `json:"restaurant_name" jsonschema:"required,description=Name of the restaurant"`
		Items          []CartItem `json:"items" jsonschema:"required,description=Items to add to the cart"`
	}

	AddToCartResponse struct {
		Error      string     `json:"error,omitempty"`
		Restaurant string     `json:"restaurant,omitempty"`
		Items      []CartItem `json:"items,omitempty"`
		Message    string     `json:"message,omitempty"`
	}

	CalculateTotalRequest struct {
		CartItems []CartItem `json:"cart_items" jsonschema:"required,description=Items currently in the cart"`
	}

	CalculateTotalResponse struct {
		Error string `json:"error,omitempty"`
		*Totals
		Message string `json:"message,omitempty"`
	}

	ProcessOrderRequest struct {
		PostalCode    string     `json:"postal_code" jsonschema:"required,description=Postal code of the delivery address"`
		DeliveryTime  string     `json:"delivery_time" jsonschema:"description=Requested delivery time"`
		PaymentMethod string     `json:"payment_method" jsonschema:"required,description=Payment method such as card or cash"`
		CartItems     []CartItem `json:"cart_items" jsonschema:"required,description=Items to order"`
	}

	ProcessOrderResponse struct {
		Error         string     `json:"error,omitempty"`
		OrderID       string     `json:"order_id,omitempty"`
		PostalCode    string     `json:"postal_code,omitempty"`
		DeliveryTime  string     `json:"delivery_time,omitempty"`
		PaymentMethod string     `json:"payment_method,omitempty"`
		Items         []CartItem `json:"items,omitempty"`
		Status        string     `json:"status,omitempty"`
		Message       string     `json:"message,omitempty"`
	}

	PayOrderRequest struct {
		OrderID       string `json:"order_id" jsonschema:"required,description=Order identifier returned by ProcessOrder"`
		PaymentMethod string `json:"payment_method" jsonschema:"required,description=Payment method such as card or cash"`
	}

	PayOrderResponse struct {
		Error         string `json:"error,omitempty"`
		OrderID       string `json:"order_id,omitempty"`
		Status        string `json:"status,omitempty"`
		PaymentMethod string `json:"payment_method,omitempty"`
		Message       string `json:"message,omitempty"`
	}

	GenerateOrderSummaryRequest struct {
		RestaurantName string     `json:"restaurant_name" jsonschema:"required,description=Name of the restaurant"`
		Items          []CartItem `json:"items" jsonschema:"required,description=Items in the order"`
		PostalCode     string     `json:"postal_code" jsonschema:"required,description=Postal code of the delivery address"`
		DeliveryTime   *string    `json:"delivery_time,omitempty" jsonschema:"description=Requested delivery time"`
	}

	GenerateOrderSummaryResponse struct {
		Error        string     `json:"error,omitempty"`
		Restaurant   string     `json:"restaurant,omitempty"`
		Items        []CartItem `json:"items,omitempty"`
		PostalCode   string     `json:"postal_code,omitempty"`
		DeliveryTime string     `json:"delivery_time,omitempty"`
		*Totals
		EtaMinutes       int    `json:"eta_minutes,omitempty"`
		FormattedSummary string `json:"formatted_summary,omitempty"`
	}
)

const (
	StatusConfirmed = "confirmed"
	StatusPaid      = "paid"
)

func errorListing(msg string) []Listing {
	return []Listing{{Error: msg}}
}
