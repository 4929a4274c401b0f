// internal/estimation/prompt.go
package estimation

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a nutrition expert estimating calories and macronutrients for logged meals.

IMPORTANT: Always respond with valid JSON in this exact format:
{
  "is_food": true,
  "title": "short meal name",
  "description": "one sentence description",
  "components": [
    {
      "name": "ingredient name",
      "amount": [number],
      "unit": "g|oz|ml|fl oz|cup|tbsp|tsp|scoop|piece|serving",
      "needs_refinement": [true/false],
      "recommended_amount": [number or null],
      "recommended_unit": "unit or null"
    }
  ],
  "calories": [number],
  "protein": [number],
  "carbs": [number],
  "fat": [number],
  "confidence": [integer 0-100]
}

Macros are grams for the whole meal. Use only the listed units.`

func textPrompt(description string) string {
	return fmt.Sprintf(`Estimate the nutrition of this meal: "%s"

Break it into ingredients with realistic portions. Set "needs_refinement" to false and leave the recommended fields null.`, description)
}

func imagePrompt(title, description string) string {
	var b strings.Builder
	b.WriteString("Estimate the nutrition of the meal in this photo.")
	if title != "" {
		fmt.Fprintf(&b, "\nThe user titled it: %q.", title)
	}
	if description != "" {
		fmt.Fprintf(&b, "\nThe user described it: %q.", description)
	}
	b.WriteString(`

When you cannot confirm an ingredient's amount or unit from the photo, set "needs_refinement" to true and put your best guess in "recommended_amount" and "recommended_unit".
If the photo does not show food, respond with {"is_food": false} and nothing else.`)
	return b.String()
}
