package tool

import (
	"context"
	"encoding/json"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/habiliai/agenteat/errors"
	"github.com/invopop/jsonschema"
)

const (
	FoodSearchName           = "FoodSearch"
	SaveUserPreferencesName  = "SaveUserPreferences"
	SearchRestaurantsName    = "SearchRestaurants"
	GetRestaurantMenuName    = "GetRestaurantMenu"
	AddToCartName            = "AddToCart"
	CalculateTotalName       = "CalculateTotal"
	ProcessOrderName         = "ProcessOrder"
	PayOrderName             = "PayOrder"
	GenerateOrderSummaryName = "GenerateOrderSummary"
)

type Spec struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"input_schema"`

	invoke   func(ctx context.Context, args json.RawMessage) (any, error)
	register func(g *genkit.Genkit) ai.Tool
}

var reflector = jsonschema.Reflector{
	DoNotReference:             true,
	ExpandedStruct:             true,
	RequiredFromJSONSchemaTags: true,
}

func define[In any, Out any](name, description string, fn func(in In) Out) Spec {
	return Spec{
		Name:        name,
		Description: description,
		InputSchema: reflector.Reflect(new(In)),
		invoke: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in In
			if len(args) > 0 {
				if err := json.Unmarshal(args, &in); err != nil {
					return nil, errors.Wrapf(errors.ErrInvalidParams, "invalid arguments for %s: %v", name, err)
				}
			}
			out := fn(in)
			appendCallData(ctx, CallData{
				Name:      name,
				Arguments: in,
				Result:    out,
			})
			return out, nil
		},
		register: func(g *genkit.Genkit) ai.Tool {
			return genkit.DefineTool(
				g,
				name,
				description,
				func(ctx *ai.ToolContext, in In) (Out, error) {
					out := fn(in)
					appendCallData(ctx, CallData{
						Name:      name,
						Arguments: in,
						Result:    out,
					})
					return out, nil
				},
			)
		},
	}
}

// Invoke runs the tool with JSON arguments and records the call on ctx.
func (s Spec) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	return s.invoke(ctx, args)
}

// Catalog returns the food ordering tools in the order the assistant is
// expected to use them.
func Catalog(orders *Orders) []Spec {
	return []Spec{
		define(FoodSearchName, `Search for food given a postal code and keywords. Returns a result based on the keywords provided.

Supported keywords and their results:
- "pizza": Returns a Margherita Pizza from Pizza Place.
- "sushi": Returns a Salmon Sushi Set from Sushi Bar.
- "burger": Returns a Classic Burger from Burger Joint.
- "chinese": Returns Chinese restaurant options.

If the keywords do not match any of the above, an error message is returned.`, FoodSearch),
		define(SaveUserPreferencesName, "Save user preferences like postal code and delivery time.", SaveUserPreferences),
		define(SearchRestaurantsName, "Search for restaurants by cuisine type (chinese, italian, indian) that deliver to the given postal code.", SearchRestaurants),
		define(GetRestaurantMenuName, "Get the menu for a specific restaurant.", GetRestaurantMenu),
		define(AddToCartName, "Add items to the cart for a specific restaurant.", AddToCart),
		define(CalculateTotalName, "Calculate the total price for the items in the cart.", CalculateTotal),
		define(GenerateOrderSummaryName, "Generate a comprehensive summary of the order before placing it.", orders.GenerateOrderSummary),
		define(ProcessOrderName, "Process the order with the given details.", orders.ProcessOrder),
		define(PayOrderName, "Pay for an order given an order ID and payment method.", PayOrder),
	}
}
