// Package dto contains the Nutritionix wire payloads.
package dto

// NutrientsRequest is the body of POST /v2/natural/nutrients.
type NutrientsRequest struct {
	Query string `json:"query"`
}

// NutrientsResponse is the subset of the response the client reads.
type NutrientsResponse struct {
	Foods []Food `json:"foods"`
}

// Food is one recognised item in the query.
type Food struct {
	FoodName    string  `json:"food_name"`
	ServingQty  float64 `json:"serving_qty"`
	ServingUnit string  `json:"serving_unit"`
	NfCalories  float64 `json:"nf_calories"`
}

// TotalCalories sums the calories of all foods.
func (r NutrientsResponse) TotalCalories() float64 {
	var total float64
	for _, f := range r.Foods {
		total += f.NfCalories
	}
	return total
}
