package planner

import "strings"

type shoppingKey struct {
	name string
	unit string
}

// GenerateShoppingList merges recipe ingredients across meals by lowercased
// name and unit, rescaled to the planned servings. A recipe with a
// non-positive base serving count is taken at face value (multiplier 1).
// Different units for the same ingredient stay separate items. Items appear
// in the order their key was first seen.
func GenerateShoppingList(meals []PlannedMeal) []ShoppingListItem {
	items := make([]ShoppingListItem, 0)
	index := make(map[shoppingKey]int)

	for _, meal := range meals {
		if meal.Recipe == nil || len(meal.Recipe.Ingredients) == 0 {
			continue
		}

		base := baseServings(meal.Recipe)
		multiplier := 1.0
		if base > 0 {
			multiplier = plannedServings(meal) / base
		}

		for _, ingredient := range meal.Recipe.Ingredients {
			scaled := ingredient.Amount * multiplier
			key := shoppingKey{
				name: strings.ToLower(ingredient.Name),
				unit: strings.ToLower(ingredient.Unit),
			}

			if i, ok := index[key]; ok {
				items[i].Amount += scaled
				continue
			}
			if scaled > 0 {
				index[key] = len(items)
				items = append(items, ShoppingListItem{
					Name:   ingredient.Name,
					Amount: scaled,
					Unit:   ingredient.Unit,
				})
			}
		}
	}

	return items
}
